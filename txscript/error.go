// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// ErrorCode identifies a kind of script error, letting callers dispatch on
// the failure mode rather than matching error strings. It maps onto the
// Consensus / Malformed kinds of the package-wide error taxonomy: parse-time
// failures (dangling IF, duplicate ELSE, oversize push) are Malformed,
// execution-time rule violations are Consensus.
type ErrorCode int

const (
	// Parse-time errors.

	// ErrMalformedPush indicates a data push's declared length runs past
	// the end of the script.
	ErrMalformedPush ErrorCode = iota

	// ErrUnbalancedConditional indicates a dangling OP_IF/OP_NOTIF (EOF
	// with an open frame), a duplicate OP_ELSE, an OP_ELSE without a
	// matching OP_IF, or an OP_ENDIF without a matching OP_IF.
	ErrUnbalancedConditional

	// ErrScriptTooBig indicates a script exceeds the maximum allowed
	// size.
	ErrScriptTooBig

	// Execution-time errors.

	// ErrDisabledOpcode indicates an opcode the bitwise/splice/arithmetic
	// disabled set was encountered, even within a branch that
	// conditional skipping would not otherwise execute.
	ErrDisabledOpcode

	// ErrReservedOpcode indicates an opcode reserved for future use, or
	// one that is always illegal (OP_VERIF/OP_VERNOTIF), was executed.
	ErrReservedOpcode

	// ErrEarlyReturn indicates OP_RETURN was executed.
	ErrEarlyReturn

	// ErrEmptyStack indicates a script evaluated without leaving a value
	// on the stack, or attempted to operate on more items than were
	// present.
	ErrEmptyStack

	// ErrEvalFalse indicates the final top stack item evaluates to false
	// after execution completes.
	ErrEvalFalse

	// ErrVerify indicates OP_VERIFY was executed and the top stack item
	// evaluated to false.
	ErrVerify

	// ErrNumberTooBig indicates a numeric value read from the stack
	// exceeds the maximum allowed number of bytes for the context.
	ErrNumberTooBig

	// ErrMinimalData indicates a numeric value or push was not encoded
	// using the minimal number of bytes under minimal-data/minimal-push
	// rules.
	ErrMinimalData

	// ErrInvalidSignature indicates a signature did not parse or verify
	// against the given public key and hash.
	ErrInvalidSignature

	// ErrTooManyPubKeys / ErrInvalidPubKeyCount indicate OP_CHECKMULTISIG
	// was given an out-of-range public key or signature count.
	ErrTooManyPubKeys
	ErrInvalidPubKeyCount

	// ErrTooManyOperations indicates the script exceeded the maximum
	// allowed number of non-push opcodes, skipped ones included.
	ErrTooManyOperations

	// ErrElementTooBig indicates an item pushed onto the stack, or
	// produced by an opcode, exceeds the maximum allowed size.
	ErrElementTooBig

	// ErrStackOverflow indicates the combined main/alt stack depth
	// exceeded its maximum.
	ErrStackOverflow

	// ErrCleanStack indicates more than one item remained on the stack
	// after execution under CLEANSTACK rules.
	ErrCleanStack

	// ErrDiscourageUpgradableNOPs indicates a reserved NOP opcode was
	// executed while the discouraged-upgradable-NOPs policy flag is set.
	ErrDiscourageUpgradableNOPs

	// ErrNegativeLockTime / ErrUnsatisfiedLockTime report
	// OP_CHECKLOCKTIMEVERIFY / OP_CHECKSEQUENCEVERIFY failures.
	ErrNegativeLockTime
	ErrUnsatisfiedLockTime

	// ErrWitnessProgramInvalid, ErrWitnessProgramMismatch report
	// malformed or inconsistent segregated witness programs.
	ErrWitnessProgramInvalid
	ErrWitnessProgramMismatch

	// ErrTaprootControlBlockInvalid reports a malformed BIP341 control
	// block.
	ErrTaprootControlBlockInvalid
)

var errorCodeStrings = map[ErrorCode]string{
	ErrMalformedPush:               "ErrMalformedPush",
	ErrUnbalancedConditional:       "ErrUnbalancedConditional",
	ErrScriptTooBig:                "ErrScriptTooBig",
	ErrDisabledOpcode:              "ErrDisabledOpcode",
	ErrReservedOpcode:              "ErrReservedOpcode",
	ErrEarlyReturn:                 "ErrEarlyReturn",
	ErrEmptyStack:                  "ErrEmptyStack",
	ErrEvalFalse:                   "ErrEvalFalse",
	ErrVerify:                      "ErrVerify",
	ErrNumberTooBig:                "ErrNumberTooBig",
	ErrMinimalData:                 "ErrMinimalData",
	ErrInvalidSignature:            "ErrInvalidSignature",
	ErrTooManyPubKeys:              "ErrTooManyPubKeys",
	ErrInvalidPubKeyCount:          "ErrInvalidPubKeyCount",
	ErrTooManyOperations:           "ErrTooManyOperations",
	ErrElementTooBig:               "ErrElementTooBig",
	ErrStackOverflow:               "ErrStackOverflow",
	ErrCleanStack:                  "ErrCleanStack",
	ErrDiscourageUpgradableNOPs:    "ErrDiscourageUpgradableNOPs",
	ErrNegativeLockTime:            "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:         "ErrUnsatisfiedLockTime",
	ErrWitnessProgramInvalid:      "ErrWitnessProgramInvalid",
	ErrWitnessProgramMismatch:     "ErrWitnessProgramMismatch",
	ErrTaprootControlBlockInvalid: "ErrTaprootControlBlockInvalid",
}

// String returns the ErrorCode in human-readable form.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error. It carries a stable code for
// programmatic handling and a description for logging, never for replay to
// peers.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	return e.Description
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether err is an Error with the given ErrorCode.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}
