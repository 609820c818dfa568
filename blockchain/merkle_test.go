// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/btcweave/corevm/wire"
)

func TestCalcMerkleRootSingleTransaction(t *testing.T) {
	tx := wire.NewMsgTx(1)
	root := CalcMerkleRoot([]*wire.MsgTx{tx}, false)
	want := tx.TxHash()
	if root != want {
		t.Fatalf("single-tx merkle root must equal the tx hash: got %x want %x", root, want)
	}
}

func TestCalcMerkleRootTwoTransactionsMatchesManualBranch(t *testing.T) {
	tx1 := wire.NewMsgTx(1)
	tx2 := wire.NewMsgTx(2)

	h1 := tx1.TxHash()
	h2 := tx2.TxHash()
	want := HashMerkleBranches(&h1, &h2)

	got := CalcMerkleRoot([]*wire.MsgTx{tx1, tx2}, false)
	if got != want {
		t.Fatalf("two-tx merkle root mismatch: got %x want %x", got, want)
	}
}

func TestCalcMerkleRootIsOrderSensitive(t *testing.T) {
	tx1 := wire.NewMsgTx(1)
	tx2 := wire.NewMsgTx(2)

	forward := CalcMerkleRoot([]*wire.MsgTx{tx1, tx2}, false)
	reversed := CalcMerkleRoot([]*wire.MsgTx{tx2, tx1}, false)
	if forward == reversed {
		t.Fatalf("merkle root must depend on transaction order")
	}
}
