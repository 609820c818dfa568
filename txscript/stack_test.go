// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "testing"

func TestOpDataPushPopByteArray(t *testing.T) {
	d := &OpData{}
	if err := d.PushByteArray([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", d.Depth())
	}
	got, err := d.PopByteArray()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	if d.Depth() != 0 {
		t.Fatalf("expected empty stack after pop")
	}
}

func TestOpDataPushByteArrayTooLarge(t *testing.T) {
	d := &OpData{}
	if err := d.PushByteArray(make([]byte, maxScriptElementSize+1)); err == nil {
		t.Fatalf("expected error pushing oversized element")
	}
}

func TestOpDataPopEmptyStack(t *testing.T) {
	d := &OpData{}
	if _, err := d.PopByteArray(); err == nil {
		t.Fatalf("expected error popping empty stack")
	}
}

func TestOpDataStackOverflow(t *testing.T) {
	d := &OpData{}
	for i := 0; i < maxStackSize; i++ {
		if err := d.PushInt(ScriptNum(i)); err != nil {
			t.Fatalf("unexpected error at element %d: %v", i, err)
		}
	}
	if err := d.PushInt(1); err == nil {
		t.Fatalf("expected overflow error past max stack size")
	}
}

func TestOpDataSwapRotPick(t *testing.T) {
	d := &OpData{}
	for _, v := range []ScriptNum{1, 2, 3} {
		if err := d.PushInt(v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := d.SwapN(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, err := d.PeekInt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if top != 2 {
		t.Fatalf("expected top 2 after swap, got %d", top)
	}

	if err := d.Pick(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, err = d.PeekInt(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if top != 1 {
		t.Fatalf("expected picked item 1, got %d", top)
	}
}

func TestOpDataAltStackRoundTrip(t *testing.T) {
	d := &OpData{}
	if err := d.PushInt(42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.ToAltStack(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Depth() != 0 {
		t.Fatalf("expected main stack empty after ToAltStack")
	}
	if err := d.FromAltStack(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := d.PopInt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42 back from alt stack, got %d", v)
	}
}
