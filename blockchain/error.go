// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a kind of error returned by block/transaction sanity
// checks. It lets callers dispatch on the failure mode instead of matching
// error strings.
type ErrorCode int

const (
	// ErrNoTransactions indicates a block does not have any
	// transactions. A valid block must have at least one transaction
	// (the coinbase).
	ErrNoTransactions ErrorCode = iota

	// ErrNoTxInputs indicates a transaction does not have any inputs. A
	// valid transaction must have at least one input.
	ErrNoTxInputs

	// ErrNoTxOutputs indicates a transaction does not have any outputs.
	// A valid transaction must have at least one output.
	ErrNoTxOutputs

	// ErrTxTooBig indicates a transaction exceeds the maximum allowed
	// size when serialized.
	ErrTxTooBig

	// ErrBadTxOutValue indicates an output value is outside the valid
	// range for monetary amounts, or the total of all output values
	// overflows the maximum allowed value.
	ErrBadTxOutValue

	// ErrDuplicateTxInputs indicates a transaction references the same
	// previous output more than once across its inputs.
	ErrDuplicateTxInputs

	// ErrBadTxInput indicates a transaction input references a null
	// previous output outside the context of a coinbase transaction.
	ErrBadTxInput

	// ErrFirstTxNotCoinbase indicates the first transaction in a block is
	// not a coinbase transaction.
	ErrFirstTxNotCoinbase

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases

	// ErrBadCoinbaseScriptLen indicates the length of the signature
	// script for a coinbase transaction is not within the valid range.
	ErrBadCoinbaseScriptLen

	// ErrBadMerkleRoot indicates the calculated merkle root of a block
	// does not match the expected value in the block header.
	ErrBadMerkleRoot

	// ErrDuplicateTx indicates a block contains an identical transaction
	// (by txid) more than once, re-triggering the CVE-2012-2459 merkle
	// duplication behavior this package preserves.
	ErrDuplicateTx

	// ErrBlockVersionTooOld indicates a block's version is too old and
	// is no longer accepted since the majority of the network has
	// upgraded to a newer version.
	ErrBlockVersionTooOld

	// ErrInvalidTime indicates a block's timestamp has a precision that
	// is more than one second, or is too far in the future.
	ErrInvalidTime

	// ErrTimeTooOld indicates a block's timestamp is not after the
	// median time of the latest blocks covered by the checkpoint.
	ErrTimeTooOld

	// ErrUnexpectedWitness indicates that a block's transactions contain
	// witness data despite no witness commitment being present in the
	// coinbase.
	ErrUnexpectedWitness

	// ErrInvalidWitnessCommitment indicates the witness commitment
	// within the coinbase transaction is not in the expected form.
	ErrInvalidWitnessCommitment

	// ErrWitnessCommitmentMismatch indicates the witness commitment
	// within the coinbase transaction does not match the actual witness
	// merkle root of the block.
	ErrWitnessCommitmentMismatch

	// ErrUnexpectedWitnessData indicates that a transaction has witness
	// data present when no inputs carrying a witness are supposed to be
	// present under the active rule set.
	ErrUnexpectedWitnessData

	// ErrScriptValidation indicates that a script failed to validate
	// during execution (C4/C5 failure surfaced at the transaction
	// level).
	ErrScriptValidation

	// ErrHighHash indicates the block does not hash to a value which is
	// lower than the required target difficulty.
	ErrHighHash

	// ErrUnexpectedDifficulty indicates specified bits do not align with
	// the expected value either because it doesn't match the calculated
	// value based on difficulty regarding the rules or it is out of the
	// valid range.
	ErrUnexpectedDifficulty

	// ErrNegativeTarget indicates the target difficulty decoded from a
	// block's nBits field is zero or negative (the compact form's sign bit
	// set on a non-zero mantissa), which is a hard consensus rejection.
	ErrNegativeTarget
)

// errorCodeStrings is a map of ErrorCode values back to their constant
// names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNoTransactions:            "ErrNoTransactions",
	ErrNoTxInputs:                "ErrNoTxInputs",
	ErrNoTxOutputs:               "ErrNoTxOutputs",
	ErrTxTooBig:                  "ErrTxTooBig",
	ErrBadTxOutValue:             "ErrBadTxOutValue",
	ErrDuplicateTxInputs:         "ErrDuplicateTxInputs",
	ErrBadTxInput:                "ErrBadTxInput",
	ErrFirstTxNotCoinbase:        "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:         "ErrMultipleCoinbases",
	ErrBadCoinbaseScriptLen:      "ErrBadCoinbaseScriptLen",
	ErrBadMerkleRoot:             "ErrBadMerkleRoot",
	ErrDuplicateTx:               "ErrDuplicateTx",
	ErrBlockVersionTooOld:        "ErrBlockVersionTooOld",
	ErrInvalidTime:               "ErrInvalidTime",
	ErrTimeTooOld:                "ErrTimeTooOld",
	ErrUnexpectedWitness:         "ErrUnexpectedWitness",
	ErrInvalidWitnessCommitment:  "ErrInvalidWitnessCommitment",
	ErrWitnessCommitmentMismatch: "ErrWitnessCommitmentMismatch",
	ErrUnexpectedWitnessData:     "ErrUnexpectedWitnessData",
	ErrScriptValidation:          "ErrScriptValidation",
	ErrHighHash:                  "ErrHighHash",
	ErrUnexpectedDifficulty:      "ErrUnexpectedDifficulty",
	ErrNegativeTarget:            "ErrNegativeTarget",
}

// String returns the ErrorCode in human-readable form.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many
// validation rules rather than malformed data or an unexpected condition.
// The caller can use it to automatically map to the Consensus kind of the
// error taxonomy without parsing the description string.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
