// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/txscript"
	"github.com/btcweave/corevm/wire"
)

const (
	// CoinbaseWitnessDataLen is the required length of the only element
	// within the coinbase's witness data if the coinbase transaction
	// contains a witness commitment.
	CoinbaseWitnessDataLen = 32

	// CoinbaseWitnessPkScriptLength is the length of the public key
	// script containing an OP_RETURN, the WitnessMagicBytes, and the
	// witness commitment itself.
	CoinbaseWitnessPkScriptLength = 38
)

// WitnessMagicBytes is the prefix marker within the public key script of a
// coinbase output that indicates it holds the witness commitment for a
// block.
var WitnessMagicBytes = []byte{
	txscript.OP_RETURN,
	txscript.OP_DATA_36,
	0xaa,
	0x21,
	0xa9,
	0xed,
}

// nextPowerOfTwo returns the next highest power of two from a given number
// if it is not already a power of two. This is a helper function used
// during the calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent
}

// HashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation. This is the operation
// used to build every non-leaf node in the tree.
func HashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var hash [chainhash.HashSize * 2]byte
	copy(hash[:chainhash.HashSize], left[:])
	copy(hash[chainhash.HashSize:], right[:])

	return chainhash.DoubleHashRaw(func(w io.Writer) error {
		_, err := w.Write(hash[:])
		return err
	})
}

// leafHashes returns the ordered list of leaf hashes BuildMerkleTreeStore
// and CalcMerkleRoot both hash upward from: txids normally, or wtxids with
// the coinbase's wtxid forced to all zero bytes when witness is true, per
// BIP141.
func leafHashes(transactions []*wire.MsgTx, witness bool) []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(transactions))
	for i, tx := range transactions {
		switch {
		case witness && i == 0:
			hashes[i] = chainhash.Hash{}
		case witness:
			hashes[i] = tx.WitnessHash()
		default:
			hashes[i] = tx.TxHash()
		}
	}
	return hashes
}

// BuildMerkleTreeStore creates a merkle tree from a slice of transactions,
// stores it using a linear array, and returns a slice of the backing array.
// A linear array was chosen as opposed to an actual tree structure since it
// uses about half as much memory.
//
// A merkle tree is a tree in which every non-leaf node is the hash of its
// children nodes. A diagram depicting how this works for bitcoin
// transactions where h(x) is a double sha256 follows:
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	h1 = h(tx1)  h2 = h(tx2)    h3 = h(tx3)  h4 = h(tx4)
//
// The above stored as a linear array is as follows:
//
//	[h1 h2 h3 h4 h12 h34 root]
//
// As the above shows, the merkle root is always the last element in the
// array.
//
// The number of inputs is not always a power of two, which results in
// missing entries in what would otherwise be a balanced tree above. Bitcoin
// fills a missing right child by duplicating its left sibling rather than
// leaving the level unbalanced — this is the CVE-2012-2459 behavior and it
// is preserved here unconditionally because it is part of consensus, not an
// implementation bug to be fixed.
func BuildMerkleTreeStore(transactions []*wire.MsgTx, witness bool) []*chainhash.Hash {
	nextPoT := nextPowerOfTwo(len(transactions))
	arraySize := nextPoT*2 - 1
	merkles := make([]*chainhash.Hash, arraySize)

	leaves := leafHashes(transactions, witness)
	for i := range leaves {
		h := leaves[i]
		merkles[i] = &h
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case merkles[i] == nil:
			merkles[offset] = nil

		case merkles[i+1] == nil:
			newHash := HashMerkleBranches(merkles[i], merkles[i])
			merkles[offset] = &newHash

		default:
			newHash := HashMerkleBranches(merkles[i], merkles[i+1])
			merkles[offset] = &newHash
		}
		offset++
	}

	return merkles
}

// CalcMerkleRoot computes the merkle root over a block's transactions,
// applying the same odd-width duplication rule as BuildMerkleTreeStore. For
// a single-element list the root is just dSHA256 of that element.
// witness selects between the txid-based and wtxid-based tree.
func CalcMerkleRoot(transactions []*wire.MsgTx, witness bool) chainhash.Hash {
	if len(transactions) == 0 {
		return chainhash.Hash{}
	}

	tree := BuildMerkleTreeStore(transactions, witness)
	return *tree[len(tree)-1]
}

// ExtractWitnessCommitment attempts to locate and return the witness
// commitment within a block's coinbase transaction. It additionally
// returns a boolean indicating whether the commitment was located within
// any of the coinbase's outputs. The witness commitment is stored as the
// data push for an OP_RETURN output with the WitnessMagicBytes prefix.
func ExtractWitnessCommitment(coinbase *wire.MsgTx) ([]byte, bool) {
	for i := len(coinbase.TxOut) - 1; i >= 0; i-- {
		pkScript := coinbase.TxOut[i].PkScript
		if len(pkScript) >= CoinbaseWitnessPkScriptLength &&
			bytes.HasPrefix(pkScript, WitnessMagicBytes) {

			start := len(WitnessMagicBytes)
			end := CoinbaseWitnessPkScriptLength
			return pkScript[start:end], true
		}
	}

	return nil, false
}

// ValidateWitnessCommitment validates the witness commitment, if any,
// carried by the coinbase transaction of the passed block.
func ValidateWitnessCommitment(block *wire.MsgBlock) error {
	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions,
			"cannot validate witness commitment of block without transactions")
	}

	coinbase := block.Transactions[0]
	if len(coinbase.TxIn) == 0 {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}

	witnessCommitment, witnessFound := ExtractWitnessCommitment(coinbase)

	if !witnessFound {
		for _, tx := range block.Transactions {
			if tx.HasWitness() {
				return ruleError(ErrUnexpectedWitness, "block contains "+
					"transaction with witness data, yet no witness "+
					"commitment present")
			}
		}
		return nil
	}

	coinbaseWitness := coinbase.TxIn[0].Witness
	if len(coinbaseWitness) != 1 {
		return ruleError(ErrInvalidWitnessCommitment, fmt.Sprintf(
			"the coinbase transaction has %d items in its witness stack "+
				"when only one is allowed", len(coinbaseWitness)))
	}
	witnessNonce := coinbaseWitness[0]
	if len(witnessNonce) != CoinbaseWitnessDataLen {
		return ruleError(ErrInvalidWitnessCommitment, fmt.Sprintf(
			"the coinbase transaction witness nonce has %d bytes when it "+
				"must be %d bytes", len(witnessNonce), CoinbaseWitnessDataLen))
	}

	witnessMerkleRoot := CalcMerkleRoot(block.Transactions, true)

	var witnessPreimage [chainhash.HashSize * 2]byte
	copy(witnessPreimage[:], witnessMerkleRoot[:])
	copy(witnessPreimage[chainhash.HashSize:], witnessNonce)

	computedCommitment := chainhash.DoubleHashB(witnessPreimage[:])
	if !bytes.Equal(computedCommitment, witnessCommitment) {
		return ruleError(ErrWitnessCommitmentMismatch, fmt.Sprintf(
			"witness commitment does not match: computed %x, coinbase "+
				"includes %x", computedCommitment, witnessCommitment))
	}

	return nil
}
