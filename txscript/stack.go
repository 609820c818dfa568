// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// maxStackSize is the maximum combined number of items allowed on the main
// and alt stacks at any point during execution.
const maxStackSize = 1000

// maxScriptElementSize is the maximum allowed size, in bytes, of an element
// pushed onto the stack, matching the maximum size of a single data push.
const maxScriptElementSize = 520

// OpData is the two-stack machine (main and alt) that backs script
// execution: push/pop/peek on either stack, duplicate, swap, roll at a given
// depth, and the two coercions — pop-as-bool and pop-as-number — each op
// family relies on.
type OpData struct {
	stack             [][]byte
	altStack          [][]byte
	verifyMinimalData bool
}

// Depth returns the number of items on the main stack.
func (d *OpData) Depth() int32 {
	return int32(len(d.stack))
}

// PushByteArray pushes the given byte array onto the main stack.
func (d *OpData) PushByteArray(so []byte) error {
	if len(so) > maxScriptElementSize {
		return scriptError(ErrElementTooBig,
			"element size exceeds max allowed size")
	}
	d.stack = append(d.stack, so)
	return d.checkOverflow()
}

// PushInt converts n to the appropriate minimal byte encoding and pushes it
// onto the main stack.
func (d *OpData) PushInt(n ScriptNum) error {
	return d.PushByteArray(n.Bytes())
}

// PushBool converts b to a ScriptNum and pushes it onto the main stack.
func (d *OpData) PushBool(b bool) error {
	if b {
		return d.PushByteArray([]byte{1})
	}
	return d.PushByteArray(nil)
}

func (d *OpData) checkOverflow() error {
	if len(d.stack)+len(d.altStack) > maxStackSize {
		return scriptError(ErrStackOverflow, "combined stack size exceeds max")
	}
	return nil
}

// PopByteArray pops and returns the top item of the main stack.
func (d *OpData) PopByteArray() ([]byte, error) {
	item, err := d.nthItem(0)
	if err != nil {
		return nil, err
	}
	d.stack = d.stack[:len(d.stack)-1]
	return item, nil
}

// PopInt pops the top item of the main stack and interprets it as a
// ScriptNum, bounded to defaultScriptNumLen bytes and subject to
// minimal-data enforcement when the executing script requires it.
func (d *OpData) PopInt() (ScriptNum, error) {
	so, err := d.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, d.verifyMinimalData, defaultScriptNumLen)
}

// PopBool pops the top item of the main stack and coerces it to a boolean:
// any nonzero byte array, after stripping a trailing sign-bit-only negative
// zero, is true.
func (d *OpData) PopBool() (bool, error) {
	so, err := d.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// asBool coerces a raw stack item to a boolean: every byte must be zero,
// except the final byte, which may additionally carry the 0x80 sign bit,
// for the item to be considered false.
func asBool(v []byte) bool {
	for i := range v {
		if v[i] != 0 {
			if i == len(v)-1 && v[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// PeekByteArray returns the item n items deep on the main stack without
// removing it; n=0 is the top.
func (d *OpData) PeekByteArray(n int32) ([]byte, error) {
	return d.nthItem(n)
}

// PeekInt returns the item n items deep on the main stack, interpreted as a
// ScriptNum, without removing it.
func (d *OpData) PeekInt(n int32) (ScriptNum, error) {
	so, err := d.nthItem(n)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, d.verifyMinimalData, defaultScriptNumLen)
}

// PeekBool returns the item n items deep on the main stack, coerced to a
// boolean, without removing it.
func (d *OpData) PeekBool(n int32) (bool, error) {
	so, err := d.nthItem(n)
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

func (d *OpData) nthItem(n int32) ([]byte, error) {
	idx := int32(len(d.stack)) - n - 1
	if idx < 0 || idx >= int32(len(d.stack)) {
		return nil, scriptError(ErrEmptyStack,
			fmt.Sprintf("attempt to access item %d on a stack of size %d", n, len(d.stack)))
	}
	return d.stack[idx], nil
}

// DupN duplicates the top n items on the main stack.
func (d *OpData) DupN(n int32) error {
	if n < 1 {
		return scriptError(ErrInvalidPubKeyCount, "n must be >= 1")
	}
	for i := n; i > 0; i-- {
		so, err := d.PeekByteArray(n - 1)
		if err != nil {
			return err
		}
		if err := d.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// Tuck inserts a duplicate of the top item before the second-to-top item.
func (d *OpData) Tuck() error {
	so2, err := d.PopByteArray()
	if err != nil {
		return err
	}
	so1, err := d.PopByteArray()
	if err != nil {
		return err
	}
	if err := d.PushByteArray(so2); err != nil {
		return err
	}
	if err := d.PushByteArray(so1); err != nil {
		return err
	}
	return d.PushByteArray(so2)
}

// DropN removes the top n items from the main stack.
func (d *OpData) DropN(n int32) error {
	for ; n > 0; n-- {
		if _, err := d.PopByteArray(); err != nil {
			return err
		}
	}
	return nil
}

// RotN rotates the top 3n items on the stack to the left n times.
func (d *OpData) RotN(n int32) error {
	entry := 3*n - 1
	for i := n; i > 0; i-- {
		so, err := d.nthItem(entry)
		if err != nil {
			return err
		}
		if err := d.removeAt(entry); err != nil {
			return err
		}
		if err := d.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

func (d *OpData) removeAt(n int32) error {
	idx := int32(len(d.stack)) - n - 1
	if idx < 0 || idx >= int32(len(d.stack)) {
		return scriptError(ErrEmptyStack, "stack index out of range")
	}
	d.stack = append(d.stack[:idx], d.stack[idx+1:]...)
	return nil
}

// SwapN swaps the top n items with the n items below them.
func (d *OpData) SwapN(n int32) error {
	entry := (2 * n) - 1
	for i := n; i > 0; i-- {
		so, err := d.nthItem(entry)
		if err != nil {
			return err
		}
		if err := d.removeAt(entry); err != nil {
			return err
		}
		if err := d.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// OverN copies the n items n+1 items back to the top of the stack.
func (d *OpData) OverN(n int32) error {
	entry := (2 * n) - 1
	for ; n > 0; n-- {
		so, err := d.nthItem(entry)
		if err != nil {
			return err
		}
		if err := d.PushByteArray(so); err != nil {
			return err
		}
	}
	return nil
}

// Pick copies the item n deep to the top of the stack, per OP_PICK.
func (d *OpData) Pick(n int32) error {
	return d.pickRoll(n, false)
}

// Roll moves the item n deep to the top of the stack, per OP_ROLL.
func (d *OpData) Roll(n int32) error {
	return d.pickRoll(n, true)
}

func (d *OpData) pickRoll(n int32, isRoll bool) error {
	so, err := d.nthItem(n)
	if err != nil {
		return err
	}
	if isRoll {
		if err := d.removeAt(n); err != nil {
			return err
		}
	}
	return d.PushByteArray(so)
}

// NipN removes the item n+1 items back from the top.
func (d *OpData) NipN(n int32) error {
	return d.removeAt(n)
}

// Swap2 swaps the top two pairs of items on the stack, for OP_2SWAP.
func (d *OpData) Swap2() error {
	return d.SwapN(2)
}

// ToAltStack moves the top item from the main stack to the alt stack.
func (d *OpData) ToAltStack() error {
	so, err := d.PopByteArray()
	if err != nil {
		return err
	}
	d.altStack = append(d.altStack, so)
	return d.checkOverflow()
}

// FromAltStack moves the top item from the alt stack to the main stack.
func (d *OpData) FromAltStack() error {
	if len(d.altStack) == 0 {
		return scriptError(ErrEmptyStack, "alt stack is empty")
	}
	so := d.altStack[len(d.altStack)-1]
	d.altStack = d.altStack[:len(d.altStack)-1]
	return d.PushByteArray(so)
}

// String returns the stack in its top to bottom order.
func (d *OpData) String() string {
	var s string
	for i := len(d.stack) - 1; i >= 0; i-- {
		s += fmt.Sprintf("%02d: %x\n", i, d.stack[i])
	}
	return s
}
