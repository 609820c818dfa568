// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/wire"
)

// SigHashType represents the hash type bits carried at the end of a
// signature, selecting which parts of the transaction the signature
// commits to.
type SigHashType uint32

const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type used to
	// identify which outputs are signed.
	sigHashMask = 0x1f
)

// removeOpcode returns script with every instance of OP_CODESEPARATOR
// removed, the legacy sighash's "code separator stripped" step.
func removeOpcode(script []byte) []byte {
	parsed, err := ParseScript(script)
	if err != nil {
		return script
	}
	var strip func(ops []Operation) []Operation
	strip = func(ops []Operation) []Operation {
		var filtered []Operation
		for _, op := range ops {
			if op.Kind == OpKindSimple && op.Opcode == OP_CODESEPARATOR {
				continue
			}
			if op.Kind == OpKindConditional {
				op.Main = strip(op.Main)
				if op.Else != nil {
					op.Else = append([]Operation{}, strip(op.Else)...)
				}
			}
			filtered = append(filtered, op)
		}
		return filtered
	}
	return Script{Ops: strip(parsed.Ops)}.Serialize()
}

// shallowCopyTx creates a shallow copy of tx for use while calculating a
// legacy signature hash, avoiding the allocation cost of a full deep copy.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	txCopy := wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, oldTxIn := range tx.TxIn {
		txIns[i] = *oldTxIn
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, oldTxOut := range tx.TxOut {
		txOuts[i] = *oldTxOut
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// CalcSignatureHash computes the pre-BIP143 legacy signature hash for input
// idx of tx against subScript and hashType: a modified shallow copy of the
// transaction (outputs/inputs zeroed or trimmed per hashType) serialized
// with the hash type appended, then dSHA256'd.
//
// The SigHashSingle bug is preserved deliberately: an out-of-range index
// under SigHashSingle hashes to 0x01 rather than failing, because fixing it
// would be a consensus change.
func CalcSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int) []byte {
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:]
	}

	subScript = removeOpcode(subScript)

	txCopy := shallowCopyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = subScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0]
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	_ = txCopy.SerializeNoWitness(&buf)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(hashType))
	return chainhash.DoubleHashB(buf.Bytes())
}

// calcHashPrevOuts / calcHashSequence / calcHashOutputs implement the three
// BIP143 rolling commitments: over every input's outpoint, every input's
// sequence, and every output, respectively.
func calcHashPrevOuts(tx *wire.MsgTx) chainhash.Hash {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		buf.Write(in.PreviousOutPoint.Hash[:])
		_ = binary.Write(&buf, binary.LittleEndian, in.PreviousOutPoint.Index)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		_ = binary.Write(&buf, binary.LittleEndian, in.Sequence)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	var buf bytes.Buffer
	for _, out := range tx.TxOut {
		_ = binary.Write(&buf, binary.LittleEndian, out.Value)
		_ = wire.WriteVarBytes(&buf, out.PkScript)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// CalcWitnessSignatureHash computes the BIP143 signature hash for input idx
// of tx, committing to the amount, the two rolling prevout/sequence hashes,
// the subScript, and (for anything but SigHashNone/Single) every output —
// the segwit v0 sighash that also underlies P2WPKH and P2WSH.
func CalcWitnessSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int, amount int64) chainhash.Hash {
	var hashPrevOuts, hashSequence, hashOutputs chainhash.Hash

	anyoneCanPay := hashType&SigHashAnyOneCanPay != 0
	signAll := hashType&sigHashMask != SigHashSingle && hashType&sigHashMask != SigHashNone

	if !anyoneCanPay {
		hashPrevOuts = calcHashPrevOuts(tx)
		if signAll {
			hashSequence = calcHashSequence(tx)
		}
	}

	if signAll {
		hashOutputs = calcHashOutputs(tx)
	} else if hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut) {
		var buf bytes.Buffer
		_ = binary.Write(&buf, binary.LittleEndian, tx.TxOut[idx].Value)
		_ = wire.WriteVarBytes(&buf, tx.TxOut[idx].PkScript)
		hashOutputs = chainhash.DoubleHashH(buf.Bytes())
	}

	var sigHash bytes.Buffer
	_ = binary.Write(&sigHash, binary.LittleEndian, tx.Version)
	sigHash.Write(hashPrevOuts[:])
	sigHash.Write(hashSequence[:])
	sigHash.Write(tx.TxIn[idx].PreviousOutPoint.Hash[:])
	_ = binary.Write(&sigHash, binary.LittleEndian, tx.TxIn[idx].PreviousOutPoint.Index)
	_ = wire.WriteVarBytes(&sigHash, subScript)
	_ = binary.Write(&sigHash, binary.LittleEndian, amount)
	_ = binary.Write(&sigHash, binary.LittleEndian, tx.TxIn[idx].Sequence)
	sigHash.Write(hashOutputs[:])
	_ = binary.Write(&sigHash, binary.LittleEndian, tx.LockTime)
	_ = binary.Write(&sigHash, binary.LittleEndian, uint32(hashType))

	return chainhash.DoubleHashH(sigHash.Bytes())
}
