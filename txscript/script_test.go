// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "testing"

// TestIfElseEndToEnd builds `<1> OP_IF <2> OP_ELSE <3> OP_ENDIF` and checks
// that execution takes the true branch and leaves 2 on the stack.
func TestIfElseEndToEnd(t *testing.T) {
	raw := []byte{
		OP_1, OP_IF,
		OP_2,
		OP_ELSE,
		OP_3,
		OP_ENDIF,
	}
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	engine := NewEngine(nil, 0)
	if err := engine.Execute(script); err != nil {
		t.Fatalf("unexpected execution error: %v", err)
	}

	v, err := engine.opData.PeekInt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected 2 on stack, got %d", v)
	}
}

// TestIfElseFalseBranch checks that OP_IF with a false condition takes the
// else branch.
func TestIfElseFalseBranch(t *testing.T) {
	raw := []byte{
		OP_0, OP_IF,
		OP_2,
		OP_ELSE,
		OP_3,
		OP_ENDIF,
	}
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	engine := NewEngine(nil, 0)
	if err := engine.Execute(script); err != nil {
		t.Fatalf("unexpected execution error: %v", err)
	}

	v, err := engine.opData.PeekInt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 {
		t.Fatalf("expected 3 on stack, got %d", v)
	}
}

// TestDisabledOpcodeFailsEvenWhenSkipped verifies that a disabled opcode
// inside the untaken branch of a conditional still fails the script, since
// OpKindDisabled is checked before the executing()/skip test.
func TestDisabledOpcodeFailsEvenWhenSkipped(t *testing.T) {
	raw := []byte{
		OP_0, OP_IF,
		OP_CAT,
		OP_ENDIF,
		OP_1,
	}
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	engine := NewEngine(nil, 0)
	err = engine.Execute(script)
	if err == nil {
		t.Fatalf("expected disabled opcode to fail script even though skipped")
	}
	if se, ok := err.(Error); !ok || se.ErrorCode != ErrDisabledOpcode {
		t.Fatalf("expected ErrDisabledOpcode, got %v", err)
	}
}

func TestParseScriptUnbalancedIf(t *testing.T) {
	raw := []byte{OP_1, OP_IF, OP_2}
	if _, err := ParseScript(raw); err == nil {
		t.Fatalf("expected error for dangling OP_IF")
	}
}

func TestParseScriptElseWithoutIf(t *testing.T) {
	raw := []byte{OP_1, OP_ELSE, OP_2, OP_ENDIF}
	if _, err := ParseScript(raw); err == nil {
		t.Fatalf("expected error for OP_ELSE without OP_IF")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	raw := []byte{
		OP_DUP, OP_HASH160,
		OP_DATA_20,
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
		OP_EQUALVERIFY, OP_CHECKSIG,
	}
	script, err := ParseScript(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := script.Serialize(); string(got) != string(raw) {
		t.Fatalf("serialize round trip mismatch:\n got: %x\nwant: %x", got, raw)
	}
}
