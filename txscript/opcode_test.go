// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"testing"
)

func runScript(t *testing.T, raw []byte) *Engine {
	t.Helper()
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e := NewEngine(nil, 0)
	if err := e.Execute(script); err != nil {
		t.Fatalf("unexpected execution error: %v", err)
	}
	return e
}

func TestOpWithinInRange(t *testing.T) {
	raw := []byte{OP_5, OP_1, OP_10, OP_WITHIN}
	e := runScript(t, raw)
	v, err := e.opData.PeekBool(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatalf("expected 5 to be within [1, 10)")
	}
}

func TestOpWithinExcludesUpperBound(t *testing.T) {
	raw := []byte{OP_10, OP_1, OP_10, OP_WITHIN}
	e := runScript(t, raw)
	v, err := e.opData.PeekBool(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v {
		t.Fatalf("expected upper bound to be excluded")
	}
}

func TestOpMinMax(t *testing.T) {
	e := runScript(t, []byte{OP_3, OP_7, OP_MIN})
	v, err := e.opData.PeekInt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 {
		t.Fatalf("expected min 3, got %d", v)
	}

	e = runScript(t, []byte{OP_3, OP_7, OP_MAX})
	v, err = e.opData.PeekInt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Fatalf("expected max 7, got %d", v)
	}
}

func TestOpHash160KnownVector(t *testing.T) {
	raw := []byte{OP_DATA_3, 'a', 'b', 'c', OP_HASH160}
	e := runScript(t, raw)
	got, err := e.opData.PeekByteArray(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// RIPEMD160(SHA256("abc")).
	want, _ := hex.DecodeString("bb1be98c142444d7a56aa3981c3942a978e4dc33")
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Fatalf("hash160(\"abc\") mismatch: got %x want %x", got, want)
	}
}

func TestOpSha256KnownVector(t *testing.T) {
	raw := []byte{OP_DATA_3, 'a', 'b', 'c', OP_SHA256}
	e := runScript(t, raw)
	got, err := e.opData.PeekByteArray(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Fatalf("sha256(\"abc\") mismatch: got %x want %x", got, want)
	}
}

func TestOpNumEqualVerifyFailure(t *testing.T) {
	raw := []byte{OP_1, OP_2, OP_NUMEQUALVERIFY}
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e := NewEngine(nil, 0)
	if err := e.Execute(script); err == nil {
		t.Fatalf("expected OP_NUMEQUALVERIFY to fail for unequal operands")
	}
}

func TestOpReservedOpcodeFails(t *testing.T) {
	raw := []byte{OP_RESERVED}
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	e := NewEngine(nil, 0)
	if err := e.Execute(script); err == nil {
		t.Fatalf("expected reserved opcode to fail")
	}
}
