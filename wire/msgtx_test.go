// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

func buildLegacyTx() *MsgTx {
	tx := NewMsgTx(1)
	prevHash := chainhash.Hash{0xaa}
	tx.AddTxIn(NewTxIn(NewOutPoint(&prevHash, 0), []byte{0x51}, nil))
	tx.AddTxOut(NewTxOut(5000000000, []byte{0x51}))
	return tx
}

func TestMsgTxSerializeRoundTripLegacy(t *testing.T) {
	tx := buildLegacyTx()

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded MsgTx
	if err := decoded.Deserialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded.Version != tx.Version || decoded.LockTime != tx.LockTime {
		t.Fatalf("scalar fields did not round trip")
	}
	if len(decoded.TxIn) != 1 || len(decoded.TxOut) != 1 {
		t.Fatalf("expected 1 input and 1 output, got %d/%d", len(decoded.TxIn), len(decoded.TxOut))
	}
	if decoded.TxOut[0].Value != tx.TxOut[0].Value {
		t.Fatalf("output value did not round trip")
	}
	if decoded.TxHash() != tx.TxHash() {
		t.Fatalf("decoded transaction hash does not match original")
	}
}

func TestMsgTxWitnessHashDiffersFromTxHashWhenWitnessPresent(t *testing.T) {
	tx := buildLegacyTx()
	tx.TxIn[0].Witness = TxWitness{[]byte{0x01, 0x02}}

	if !tx.HasWitness() {
		t.Fatalf("expected HasWitness to report true once a witness stack is attached")
	}
	if tx.TxHash() == tx.WitnessHash() {
		t.Fatalf("txid must be witness-stripped and differ from wtxid when a witness is present")
	}
}

func TestMsgTxNoWitnessTxHashEqualsWitnessHash(t *testing.T) {
	tx := buildLegacyTx()
	if tx.HasWitness() {
		t.Fatalf("expected no witness on a legacy-only transaction")
	}
	if tx.TxHash() != tx.WitnessHash() {
		t.Fatalf("txid must equal wtxid when there is no witness data")
	}
}

func TestMsgTxCopyIsIndependent(t *testing.T) {
	tx := buildLegacyTx()
	clone := tx.Copy()
	clone.TxOut[0].Value = 1

	if tx.TxOut[0].Value == clone.TxOut[0].Value {
		t.Fatalf("Copy must produce an independent transaction")
	}
}
