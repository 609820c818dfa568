// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160"
)

// ScriptFlags are the policy/consensus flags that modify script execution
// behavior.
type ScriptFlags uint32

const (
	ScriptBip16 ScriptFlags = 1 << iota
	ScriptVerifyDERSignatures
	ScriptVerifyStrictEncoding
	ScriptVerifyLowS
	ScriptVerifyCheckLockTimeVerify
	ScriptVerifyCheckSequenceVerify
	ScriptVerifyMinimalData
	ScriptVerifyCleanStack
	ScriptVerifyWitness
	ScriptVerifyDiscourageUpgradableNops
	ScriptVerifyTaproot
)

// maxOpsPerScript is the execution cap: the total number of non-push
// opcodes, including those in skipped branches, per legacy scripts, must
// not exceed this.
const maxOpsPerScript = 201

// SigChecker is the subset of transaction-input context a script executor
// needs to verify OP_CHECKSIG/OP_CHECKMULTISIG/OP_CHECKLOCKTIMEVERIFY/
// OP_CHECKSEQUENCEVERIFY without the engine owning a concrete Transaction
// type — kept as a narrow collaborator interface so txscript doesn't need
// to import the wire types it would otherwise depend on circularly.
type SigChecker interface {
	// CheckSig verifies a raw (DER or Schnorr, depending on sigVersion)
	// signature against pubKey for the sighash computed over this
	// execution's input index.
	CheckSig(sig, pubKey, subScript []byte) (bool, error)

	// CheckLockTime reports whether the transaction's nLockTime/input
	// sequence satisfies the given OP_CHECKLOCKTIMEVERIFY /
	// OP_CHECKSEQUENCEVERIFY operand.
	CheckLockTime(lockTime ScriptNum) bool
	CheckSequence(sequence ScriptNum) bool
}

// Engine holds the per-execution state needed to run one input's
// scriptSig/scriptPubKey/witness against its SigChecker: the OpData stack
// machine, the opcode counter, the conditional-execution stack, and the
// active flags. Signature operations are not counted. It exists only for the duration of one input validation, per the
// lifecycle/ownership rule.
type Engine struct {
	flags     ScriptFlags
	checker   SigChecker
	opData    *OpData
	numOps    int
	condStack []bool
}

// NewEngine constructs an Engine for validating one script against the
// given SigChecker collaborator.
func NewEngine(checker SigChecker, flags ScriptFlags) *Engine {
	return &Engine{
		flags:   flags,
		checker: checker,
		opData:  &OpData{verifyMinimalData: flags&ScriptVerifyMinimalData != 0},
	}
}

// executing reports whether the current conditional-skip frame (and all of
// its ancestors) are active.
func (e *Engine) executing() bool {
	for _, b := range e.condStack {
		if !b {
			return false
		}
	}
	return true
}

// Execute runs script against e's OpData, leaving the resulting stack for
// the caller to inspect. It never panics; all failures return as error.
func (e *Engine) Execute(script Script) error {
	for _, op := range script.Ops {
		if err := e.step(op); err != nil {
			return err
		}
	}
	return nil
}

// step dispatches a single parsed Operation, implementing conditional
// skipping: when any ancestor frame is false, non-conditional ops are
// skipped but still counted toward the op-count cap, while disabled and
// always-illegal opcodes still fail the script even though they would
// otherwise be skipped.
func (e *Engine) step(op Operation) error {
	switch op.Kind {
	case OpKindDisabled:
		return scriptError(ErrDisabledOpcode,
			"attempt to execute disabled opcode "+opcodeNameFor(op.Opcode))

	case OpKindConditional:
		return e.execConditional(op)
	}

	if op.Kind != OpKindPush {
		e.numOps++
		if e.numOps > maxOpsPerScript {
			return scriptError(ErrTooManyOperations, "exceeded max operation limit")
		}
	}

	if !e.executing() {
		return nil
	}

	switch op.Kind {
	case OpKindPush:
		if e.flags&ScriptVerifyMinimalData != 0 && !op.MinimalPush {
			return scriptError(ErrMinimalData, "push was not minimally encoded")
		}
		return e.opData.PushByteArray(op.Data)

	case OpKindReturn:
		return scriptError(ErrEarlyReturn, "OP_RETURN executed")

	case OpKindSimple:
		return e.execSimple(op.Opcode)
	}

	return nil
}

func (e *Engine) execConditional(op Operation) error {
	var cond bool
	if e.executing() {
		var err error
		cond, err = e.opData.PopBool()
		if err != nil {
			return err
		}
		if op.IsNotIf {
			cond = !cond
		}
	}

	// Both branches are walked so step sees every operation; the untaken
	// one runs under a false frame, which skips all but disabled opcodes.
	e.condStack = append(e.condStack, cond)
	branchErr := e.Execute(Script{Ops: op.Main})
	if branchErr == nil && op.Else != nil {
		e.condStack[len(e.condStack)-1] = !cond
		branchErr = e.Execute(Script{Ops: op.Else})
	}
	e.condStack = e.condStack[:len(e.condStack)-1]
	return branchErr
}

// Success reports whether the engine's final state is a successful one:
// the top main-stack item is true and, when cleanStack is true, exactly one
// item remains.
func (e *Engine) Success() error {
	if e.opData.Depth() < 1 {
		return scriptError(ErrEmptyStack, "stack empty at end of execution")
	}
	v, err := e.opData.PeekBool(0)
	if err != nil {
		return err
	}
	if !v {
		return scriptError(ErrEvalFalse, "false stack entry at end of execution")
	}
	if e.flags&ScriptVerifyCleanStack != 0 && e.opData.Depth() != 1 {
		return scriptError(ErrCleanStack, "stack contains additional items after execution")
	}
	return nil
}

// execSimple executes any OpKindSimple opcode: stack manipulation, bitwise,
// arithmetic, and crypto opcode families, plus NOP/reserved handling.
func (e *Engine) execSimple(op byte) error {
	d := e.opData

	switch op {
	case OP_NOP:
		return nil

	case OP_NOP1, OP_NOP4, OP_NOP5, OP_NOP6, OP_NOP7, OP_NOP8, OP_NOP9, OP_NOP10:
		if e.flags&ScriptVerifyDiscourageUpgradableNops != 0 {
			return scriptError(ErrDiscourageUpgradableNOPs,
				"use of upgradable NOP discouraged by policy")
		}
		return nil

	case OP_VER, OP_RESERVED, OP_RESERVED1, OP_RESERVED2:
		return scriptError(ErrReservedOpcode, "attempt to execute reserved opcode "+opcodeNameFor(op))

	case OP_VERIFY:
		v, err := d.PopBool()
		if err != nil {
			return err
		}
		if !v {
			return scriptError(ErrVerify, "OP_VERIFY failed")
		}
		return nil

	case OP_TOALTSTACK:
		return d.ToAltStack()
	case OP_FROMALTSTACK:
		return d.FromAltStack()
	case OP_2DROP:
		return d.DropN(2)
	case OP_2DUP:
		return d.DupN(2)
	case OP_3DUP:
		return d.DupN(3)
	case OP_2OVER:
		return d.OverN(2)
	case OP_2ROT:
		return d.RotN(2)
	case OP_2SWAP:
		return d.Swap2()
	case OP_IFDUP:
		v, err := d.PeekBool(0)
		if err != nil {
			return err
		}
		if v {
			return d.DupN(1)
		}
		return nil
	case OP_DEPTH:
		return d.PushInt(ScriptNum(d.Depth()))
	case OP_DROP:
		return d.DropN(1)
	case OP_DUP:
		return d.DupN(1)
	case OP_NIP:
		return d.NipN(1)
	case OP_OVER:
		return d.OverN(1)
	case OP_PICK, OP_ROLL:
		n, err := d.PopInt()
		if err != nil {
			return err
		}
		if int32(n) < 0 || int32(n) >= d.Depth() {
			return scriptError(ErrEmptyStack, "pick/roll index out of range")
		}
		if op == OP_PICK {
			return d.Pick(int32(n))
		}
		return d.Roll(int32(n))
	case OP_ROT:
		return d.RotN(1)
	case OP_SWAP:
		return d.SwapN(1)
	case OP_TUCK:
		return d.Tuck()
	case OP_SIZE:
		top, err := d.PeekByteArray(0)
		if err != nil {
			return err
		}
		return d.PushInt(ScriptNum(len(top)))

	case OP_EQUAL, OP_EQUALVERIFY:
		b1, err := d.PopByteArray()
		if err != nil {
			return err
		}
		b2, err := d.PopByteArray()
		if err != nil {
			return err
		}
		equal := bytes.Equal(b1, b2)
		if op == OP_EQUALVERIFY {
			if !equal {
				return scriptError(ErrVerify, "OP_EQUALVERIFY failed")
			}
			return nil
		}
		return d.PushBool(equal)

	case OP_1ADD, OP_1SUB, OP_NEGATE, OP_ABS, OP_NOT, OP_0NOTEQUAL:
		return e.execUnaryNum(op)

	case OP_ADD, OP_SUB, OP_BOOLAND, OP_BOOLOR, OP_NUMEQUAL, OP_NUMEQUALVERIFY,
		OP_NUMNOTEQUAL, OP_LESSTHAN, OP_GREATERTHAN, OP_LESSTHANOREQUAL,
		OP_GREATERTHANOREQUAL, OP_MIN, OP_MAX:
		return e.execBinaryNum(op)

	case OP_WITHIN:
		max, err := d.PopInt()
		if err != nil {
			return err
		}
		min, err := d.PopInt()
		if err != nil {
			return err
		}
		x, err := d.PopInt()
		if err != nil {
			return err
		}
		return d.PushBool(x >= min && x < max)

	case OP_RIPEMD160:
		return e.execHash1(ripemd160Sum)
	case OP_SHA1:
		return e.execHash1(sha1Sum)
	case OP_SHA256:
		return e.execHash1(sha256Sum)
	case OP_HASH160:
		return e.execHash1(hash160Sum)
	case OP_HASH256:
		return e.execHash1(hash256Sum)

	case OP_CODESEPARATOR:
		return nil

	case OP_CHECKSIG, OP_CHECKSIGVERIFY:
		return e.execCheckSig(op == OP_CHECKSIGVERIFY)

	case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
		return e.execCheckMultiSig(op == OP_CHECKMULTISIGVERIFY)

	case OP_CHECKLOCKTIMEVERIFY:
		n, err := d.PeekInt(0)
		if err != nil {
			return err
		}
		if n < 0 {
			return scriptError(ErrNegativeLockTime, "negative locktime")
		}
		if e.flags&ScriptVerifyCheckLockTimeVerify != 0 && !e.checker.CheckLockTime(n) {
			return scriptError(ErrUnsatisfiedLockTime, "locktime requirement not satisfied")
		}
		return nil

	case OP_CHECKSEQUENCEVERIFY:
		n, err := d.PeekInt(0)
		if err != nil {
			return err
		}
		if n < 0 {
			return scriptError(ErrNegativeLockTime, "negative sequence")
		}
		if e.flags&ScriptVerifyCheckSequenceVerify != 0 && !e.checker.CheckSequence(n) {
			return scriptError(ErrUnsatisfiedLockTime, "sequence requirement not satisfied")
		}
		return nil

	case OP_CHECKSIGADD:
		return e.execCheckSigAdd()
	}

	return scriptError(ErrReservedOpcode, "unimplemented opcode "+opcodeNameFor(op))
}

func (e *Engine) execUnaryNum(op byte) error {
	n, err := e.opData.PopInt()
	if err != nil {
		return err
	}

	var result ScriptNum
	switch op {
	case OP_1ADD:
		result = n + 1
	case OP_1SUB:
		result = n - 1
	case OP_NEGATE:
		result = -n
	case OP_ABS:
		if n < 0 {
			result = -n
		} else {
			result = n
		}
	case OP_NOT:
		if n == 0 {
			result = 1
		} else {
			result = 0
		}
	case OP_0NOTEQUAL:
		if n != 0 {
			result = 1
		} else {
			result = 0
		}
	}
	return e.opData.PushInt(result)
}

func (e *Engine) execBinaryNum(op byte) error {
	b, err := e.opData.PopInt()
	if err != nil {
		return err
	}
	a, err := e.opData.PopInt()
	if err != nil {
		return err
	}

	if op == OP_NUMEQUALVERIFY {
		if a != b {
			return scriptError(ErrVerify, "OP_NUMEQUALVERIFY failed")
		}
		return nil
	}

	switch op {
	case OP_ADD:
		return e.opData.PushInt(a + b)
	case OP_SUB:
		return e.opData.PushInt(a - b)
	case OP_BOOLAND:
		return e.opData.PushBool(a != 0 && b != 0)
	case OP_BOOLOR:
		return e.opData.PushBool(a != 0 || b != 0)
	case OP_NUMEQUAL:
		return e.opData.PushBool(a == b)
	case OP_NUMNOTEQUAL:
		return e.opData.PushBool(a != b)
	case OP_LESSTHAN:
		return e.opData.PushBool(a < b)
	case OP_GREATERTHAN:
		return e.opData.PushBool(a > b)
	case OP_LESSTHANOREQUAL:
		return e.opData.PushBool(a <= b)
	case OP_GREATERTHANOREQUAL:
		return e.opData.PushBool(a >= b)
	case OP_MIN:
		if a < b {
			return e.opData.PushInt(a)
		}
		return e.opData.PushInt(b)
	case OP_MAX:
		if a > b {
			return e.opData.PushInt(a)
		}
		return e.opData.PushInt(b)
	}
	return nil
}

func sha1Sum(b []byte) []byte {
	h := sha1.Sum(b)
	return h[:]
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

func ripemd160Sum(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}

func hash160Sum(b []byte) []byte {
	return ripemd160Sum(sha256Sum(b))
}

func hash256Sum(b []byte) []byte {
	h := chainhash.DoubleHashB(b)
	return h
}

func (e *Engine) execHash1(hashFn func([]byte) []byte) error {
	top, err := e.opData.PopByteArray()
	if err != nil {
		return err
	}
	return e.opData.PushByteArray(hashFn(top))
}

func (e *Engine) execCheckSig(verify bool) error {
	pubKey, err := e.opData.PopByteArray()
	if err != nil {
		return err
	}
	sig, err := e.opData.PopByteArray()
	if err != nil {
		return err
	}

	ok, err := e.checker.CheckSig(sig, pubKey, nil)
	if err != nil || !ok {
		if verify {
			return scriptError(ErrInvalidSignature, "OP_CHECKSIGVERIFY failed")
		}
		return e.opData.PushBool(false)
	}
	if verify {
		return nil
	}
	return e.opData.PushBool(true)
}

func (e *Engine) execCheckSigAdd() error {
	pubKey, err := e.opData.PopByteArray()
	if err != nil {
		return err
	}
	n, err := e.opData.PopInt()
	if err != nil {
		return err
	}
	sig, err := e.opData.PopByteArray()
	if err != nil {
		return err
	}

	if len(sig) == 0 {
		return e.opData.PushInt(n)
	}

	ok, err := e.checker.CheckSig(sig, pubKey, nil)
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrInvalidSignature, "OP_CHECKSIGADD signature invalid")
	}
	return e.opData.PushInt(n + 1)
}

func (e *Engine) execCheckMultiSig(verify bool) error {
	d := e.opData

	numKeys, err := d.PopInt()
	if err != nil {
		return err
	}
	if numKeys < 0 || numKeys > 20 {
		return scriptError(ErrInvalidPubKeyCount, "OP_CHECKMULTISIG pubkey count out of range")
	}

	pubKeys := make([][]byte, numKeys)
	for i := range pubKeys {
		pubKeys[i], err = d.PopByteArray()
		if err != nil {
			return err
		}
	}

	numSigs, err := d.PopInt()
	if err != nil {
		return err
	}
	if numSigs < 0 || numSigs > numKeys {
		return scriptError(ErrInvalidPubKeyCount, "OP_CHECKMULTISIG signature count out of range")
	}

	sigs := make([][]byte, numSigs)
	for i := range sigs {
		sigs[i], err = d.PopByteArray()
		if err != nil {
			return err
		}
	}

	// The well-known off-by-one dummy element consumed by OP_CHECKMULTISIG.
	if _, err := d.PopByteArray(); err != nil {
		return err
	}

	success := true
	keyIdx := 0
	for _, sig := range sigs {
		matched := false
		for keyIdx < len(pubKeys) {
			pk := pubKeys[keyIdx]
			keyIdx++
			ok, verr := e.checker.CheckSig(sig, pk, nil)
			if verr == nil && ok {
				matched = true
				break
			}
		}
		if !matched {
			success = false
			break
		}
	}

	if verify {
		if !success {
			return scriptError(ErrInvalidSignature, "OP_CHECKMULTISIGVERIFY failed")
		}
		return nil
	}
	return d.PushBool(success)
}
