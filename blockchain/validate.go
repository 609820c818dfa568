// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/chaincfg"
	"github.com/btcweave/corevm/wire"
	"github.com/davecgh/go-spew/spew"
)

const (
	// MaxBlockWeight is the maximum block weight, counting witness data
	// at one-fourth the weight of non-witness data, as defined by
	// BIP141.
	MaxBlockWeight = 4_000_000

	// WitnessScaleFactor determines the level of weight discount witness
	// data receives relative to non-witness data: one byte of witness
	// data weighs this many times less than a byte of base data.
	WitnessScaleFactor = 4

	// maxTimeOffsetSeconds is the maximum number of seconds a block time
	// is allowed to be ahead of the current time before it is rejected.
	maxTimeOffsetSeconds = 2 * 60 * 60
)

// IsCoinBaseTx determines whether a transaction is a coinbase transaction:
// exactly one input whose previous outpoint hash is the zero hash and
// index is the maximum uint32 value.
func IsCoinBaseTx(msgTx *wire.MsgTx) bool {
	if len(msgTx.TxIn) != 1 {
		return false
	}

	prevOut := &msgTx.TxIn[0].PreviousOutPoint
	return prevOut.Index == math.MaxUint32 && prevOut.Hash == (chainhash.Hash{})
}

// CheckTransactionSanity performs context-free sanity checks on a
// transaction's shape: non-empty input/output lists, no duplicate
// referenced outpoints, in-range output values, and coinbase-specific
// signature script length limits.
func CheckTransactionSanity(tx *wire.MsgTx) error {
	if len(tx.TxIn) == 0 {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}
	if len(tx.TxOut) == 0 {
		return ruleError(ErrNoTxOutputs, "transaction has no outputs")
	}

	var totalSatoshi int64
	for _, txOut := range tx.TxOut {
		satoshi := txOut.Value
		if satoshi < 0 {
			return ruleError(ErrBadTxOutValue, fmt.Sprintf(
				"transaction output has negative value of %d", satoshi))
		}
		if satoshi > maxSatoshi {
			return ruleError(ErrBadTxOutValue, fmt.Sprintf(
				"transaction output value of %d is higher than max "+
					"allowed value of %d", satoshi, maxSatoshi))
		}

		totalSatoshi += satoshi
		if totalSatoshi < 0 {
			return ruleError(ErrBadTxOutValue,
				"total value of all transaction outputs overflows")
		}
		if totalSatoshi > maxSatoshi {
			return ruleError(ErrBadTxOutValue, fmt.Sprintf(
				"total value of all transaction outputs is %d which is "+
					"higher than max allowed value of %d", totalSatoshi,
				maxSatoshi))
		}
	}

	existingOutpoints := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		if _, exists := existingOutpoints[txIn.PreviousOutPoint]; exists {
			return ruleError(ErrDuplicateTxInputs,
				"transaction contains duplicate inputs")
		}
		existingOutpoints[txIn.PreviousOutPoint] = struct{}{}
	}

	if IsCoinBaseTx(tx) {
		slen := len(tx.TxIn[0].SignatureScript)
		if slen < minCoinbaseScriptLen || slen > maxCoinbaseScriptLen {
			return ruleError(ErrBadCoinbaseScriptLen, fmt.Sprintf(
				"coinbase transaction script length of %d is out of "+
					"range (min: %d, max: %d)", slen, minCoinbaseScriptLen,
				maxCoinbaseScriptLen))
		}
	} else {
		for _, txIn := range tx.TxIn {
			if txIn.PreviousOutPoint.Hash == (chainhash.Hash{}) {
				return ruleError(ErrBadTxInput,
					"transaction input refers to previous output that "+
						"is null outside of a coinbase transaction")
			}
		}
	}

	return nil
}

const (
	// maxSatoshi is the maximum transaction amount allowed in satoshi,
	// matching the 21 million BTC supply cap.
	maxSatoshi = 21_000_000 * 100_000_000

	// baseSubsidy is the starting subsidy amount, in satoshi, for mined
	// blocks. It is halved every SubsidyReductionInterval blocks.
	baseSubsidy = 50 * 1e8

	// minCoinbaseScriptLen and maxCoinbaseScriptLen bound the coinbase
	// signature script length per Bitcoin Core's consensus rules.
	minCoinbaseScriptLen = 2
	maxCoinbaseScriptLen = 100
)

// CalcBlockSubsidy returns the subsidy amount a block at the provided
// height should have. This is mainly used for verifying that coinbase
// output values do not overclaim.
//
// The subsidy is halved every SubsidyReductionInterval blocks. Mathematically
// this is: baseSubsidy / 2^(height/SubsidyReductionInterval)
//
// At the target block generation rate for the main network, this is
// approximately every 4 years.
func CalcBlockSubsidy(height int32, params *chaincfg.Params) int64 {
	if params.SubsidyReductionInterval == 0 {
		return baseSubsidy
	}

	// Equivalent to: baseSubsidy / 2^(height/subsidyHalvingInterval)
	return baseSubsidy >> uint(height/params.SubsidyReductionInterval)
}

// CheckBlockHeaderSanity performs context-free sanity checks on a block
// header: proof of work within the network's limit, and a timestamp that
// isn't absurdly far in the future. It does not check continuity against a
// particular chain tip — that requires the chain index this core does not
// carry (see chaincfg.Params / blockchain.BlockStore in the external
// collaborator interfaces).
func CheckBlockHeaderSanity(header *wire.BlockHeader, params *chaincfg.Params, now time.Time) error {
	hash := header.BlockHash()
	if err := CheckProofOfWork(hash, header.Bits, params.PowLimit); err != nil {
		return err
	}

	maxTimestamp := now.Add(time.Second * maxTimeOffsetSeconds)
	if header.Timestamp.After(maxTimestamp) {
		return ruleError(ErrInvalidTime, fmt.Sprintf(
			"block timestamp of %v is too far in the future", header.Timestamp))
	}

	return nil
}

// CheckBlockSanity performs context-free sanity checks on an entire block:
// header sanity, a non-empty transaction list whose first (and only first)
// entry is a coinbase, per-transaction sanity, and merkle root agreement.
func CheckBlockSanity(block *wire.MsgBlock, params *chaincfg.Params, now time.Time) error {
	log.Tracef("Checking block sanity for %s", block.Header.BlockHash())

	if err := CheckBlockHeaderSanity(&block.Header, params, now); err != nil {
		return err
	}

	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}

	if !IsCoinBaseTx(block.Transactions[0]) {
		return ruleError(ErrFirstTxNotCoinbase,
			"first transaction in block is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if IsCoinBaseTx(tx) {
			return ruleError(ErrMultipleCoinbases,
				"block contains second coinbase transaction")
		}
	}

	for _, tx := range block.Transactions {
		if err := CheckTransactionSanity(tx); err != nil {
			return err
		}
	}

	seen := make(map[wire.OutPoint]struct{})
	for _, tx := range block.Transactions {
		txid := tx.TxHash()
		op := wire.OutPoint{Hash: txid}
		if _, exists := seen[op]; exists {
			return ruleError(ErrDuplicateTx, fmt.Sprintf(
				"block contains duplicate transaction %s", txid))
		}
		seen[op] = struct{}{}
	}

	calculatedRoot := CalcMerkleRoot(block.Transactions, false)
	if calculatedRoot != block.Header.MerkleRoot {
		return ruleError(ErrBadMerkleRoot, fmt.Sprintf(
			"block merkle root is invalid - block header indicates %v, "+
				"but calculated value is %v", block.Header.MerkleRoot,
			calculatedRoot))
	}

	if err := ValidateWitnessCommitment(block); err != nil {
		return err
	}

	log.Tracef("Block %s passed sanity checks: %v", block.Header.BlockHash(),
		spew.Sdump(block.Header))

	return nil
}
