// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/btcweave/corevm/chaincfg"
	"github.com/btcweave/corevm/wire"
)

func TestCalcBlockSubsidyHalvingSchedule(t *testing.T) {
	params := &chaincfg.MainNetParams
	interval := params.SubsidyReductionInterval

	cases := []struct {
		height int32
		want   int64
	}{
		{0, 50 * 1e8},
		{interval - 1, 50 * 1e8},
		{interval, 25 * 1e8},
		{2 * interval, 125 * 1e7},
		{33 * interval, 0}, // subsidy exhausted
	}
	for _, c := range cases {
		if got := CalcBlockSubsidy(c.height, params); got != c.want {
			t.Fatalf("height %d: got %d want %d", c.height, got, c.want)
		}
	}
}

func TestCalcBlockSubsidyNoHalvingInterval(t *testing.T) {
	params := chaincfg.MainNetParams
	params.SubsidyReductionInterval = 0
	if got := CalcBlockSubsidy(10_000_000, &params); got != 50*1e8 {
		t.Fatalf("zero interval must never halve: got %d", got)
	}
}

func TestCheckBlockSanityGenesis(t *testing.T) {
	params := &chaincfg.MainNetParams
	now := params.GenesisBlock.Header.Timestamp.Add(time.Hour)
	if err := CheckBlockSanity(params.GenesisBlock, params, now); err != nil {
		t.Fatalf("genesis block must pass sanity checks: %v", err)
	}
}

func TestCheckBlockSanityRejectsBadMerkleRoot(t *testing.T) {
	params := &chaincfg.MainNetParams

	// Append a transaction the header's merkle root does not commit to.
	// The header itself is untouched, so its proof of work stays valid and
	// the failure is unambiguously the merkle mismatch.
	block := *params.GenesisBlock
	block.Transactions = append([]*wire.MsgTx{}, block.Transactions...)

	extra := wire.NewMsgTx(1)
	prevHash := block.Transactions[0].TxHash()
	extra.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), []byte{0x51}, nil))
	extra.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))
	block.Transactions = append(block.Transactions, extra)

	err := CheckBlockSanity(&block, params, block.Header.Timestamp.Add(time.Hour))
	rerr, ok := err.(RuleError)
	if !ok || rerr.ErrorCode != ErrBadMerkleRoot {
		t.Fatalf("expected ErrBadMerkleRoot, got %v", err)
	}
}
