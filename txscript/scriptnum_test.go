// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"pgregory.net/rapid"
)

func TestScriptNumBytesRoundTrip(t *testing.T) {
	cases := []ScriptNum{0, 1, -1, 127, 128, -128, 255, 256, 32767, -32768, 1<<31 - 1, -(1<<31 - 1)}
	for _, n := range cases {
		encoded := n.Bytes()
		decoded, err := makeScriptNum(encoded, true, defaultScriptNumLen)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if decoded != n {
			t.Fatalf("n=%d: round trip produced %d", n, decoded)
		}
	}
}

func TestScriptNumMinimalEncodingRejected(t *testing.T) {
	// Two zero-padded bytes for the value 1: not minimally encoded.
	nonMinimal := []byte{0x01, 0x00}
	if _, err := makeScriptNum(nonMinimal, true, defaultScriptNumLen); err == nil {
		t.Fatalf("expected non-minimal encoding to be rejected")
	}
	if _, err := makeScriptNum(nonMinimal, false, defaultScriptNumLen); err != nil {
		t.Fatalf("non-minimal encoding should be accepted when not required: %v", err)
	}
}

func TestScriptNumBoolZeroIsFalse(t *testing.T) {
	if ScriptNum(0).Bool() {
		t.Fatalf("0 must be false")
	}
	if !ScriptNum(1).Bool() {
		t.Fatalf("1 must be true")
	}
	if !ScriptNum(-1).Bool() {
		t.Fatalf("-1 must be true")
	}
}

// TestScriptNumBytesRoundTripProperty checks the Bytes/makeScriptNum round
// trip across the 32-bit signed range the arithmetic opcodes operate on,
// excluding the single value (math.MinInt32) whose sign-magnitude encoding
// needs a 5th byte and so can't round trip through defaultScriptNumLen.
func TestScriptNumBytesRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := ScriptNum(rapid.Int64Range(-(1<<31-1), 1<<31-1).Draw(t, "n"))

		encoded := n.Bytes()
		decoded, err := makeScriptNum(encoded, true, defaultScriptNumLen)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if decoded != n {
			t.Fatalf("n=%d: round trip produced %d", n, decoded)
		}
	})
}

func TestScriptNumInt32Clamps(t *testing.T) {
	if got := ScriptNum(1 << 40).Int32(); got != 1<<31-1 {
		t.Fatalf("expected clamp to max int32, got %d", got)
	}
	if got := ScriptNum(-(1 << 40)).Int32(); got != -(1 << 31) {
		t.Fatalf("expected clamp to min int32, got %d", got)
	}
}
