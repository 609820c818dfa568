// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
	"time"

	"github.com/btcweave/corevm/chaincfg"
)

func TestCompactToBigKnownMainnetGenesisBits(t *testing.T) {
	// 0x1d00ffff is the mainnet genesis difficulty target: mantissa
	// 0x00ffff shifted left by 8*(0x1d-3) = 208 bits.
	got := CompactToBig(0x1d00ffff)
	want := new(big.Int).Lsh(big.NewInt(0xffff), 208)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestCompactBigRoundTrip(t *testing.T) {
	// BigToCompact always normalizes to the minimal-exponent form, so the
	// round trip is only guaranteed to preserve the decoded *value*, not
	// necessarily the original compact bytes for non-canonical inputs.
	cases := []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff}
	for _, compact := range cases {
		n := CompactToBig(compact)
		n2 := CompactToBig(BigToCompact(n))
		if n.Cmp(n2) != 0 {
			t.Fatalf("compact=%#x: value round trip mismatch: got %s want %s", compact, n2, n)
		}
	}
}

func TestCompactToBigNegativeBit(t *testing.T) {
	// Exponent 4 keeps the mantissa 0x000001 (shifted up one byte), so the
	// sign bit applies to a non-zero value.
	n := CompactToBig(0x04800001)
	if n.Sign() >= 0 {
		t.Fatalf("expected negative target from sign bit, got %s", n)
	}
}

func TestCalcWorkDecreasesAsTargetIncreases(t *testing.T) {
	easyWork := CalcWork(0x207fffff)
	hardWork := CalcWork(0x1d00ffff)
	if hardWork.Cmp(easyWork) <= 0 {
		t.Fatalf("a smaller target (harder) must represent more accumulated work")
	}
}

func TestCalcWorkZeroForNonPositiveTarget(t *testing.T) {
	if got := CalcWork(0); got.Sign() != 0 {
		t.Fatalf("expected zero work for a zero target, got %s", got)
	}
}

func TestCalcNextRequiredDifficultyOnSchedule(t *testing.T) {
	params := &chaincfg.MainNetParams
	first := time.Unix(1_000_000, 0)
	last := first.Add(params.TargetTimespan)

	const lastBits = 0x1b0404cb
	if got := CalcNextRequiredDifficulty(params, lastBits, first, last); got != lastBits {
		t.Fatalf("on-schedule window must keep difficulty: got %#x want %#x", got, lastBits)
	}
}

func TestCalcNextRequiredDifficultySlowBlocksEaseDifficulty(t *testing.T) {
	params := &chaincfg.MainNetParams
	first := time.Unix(1_000_000, 0)
	last := first.Add(2 * params.TargetTimespan)

	const lastBits = 0x1b0404cb
	got := CalcNextRequiredDifficulty(params, lastBits, first, last)
	if CompactToBig(got).Cmp(CompactToBig(lastBits)) <= 0 {
		t.Fatalf("slow blocks must raise the target (lower the difficulty)")
	}
}

func TestCalcNextRequiredDifficultyClampsAdjustment(t *testing.T) {
	params := &chaincfg.MainNetParams
	first := time.Unix(1_000_000, 0)

	const lastBits = 0x1b0404cb
	atClamp := CalcNextRequiredDifficulty(params, lastBits, first,
		first.Add(time.Duration(params.RetargetAdjustmentFactor)*params.TargetTimespan))
	pastClamp := CalcNextRequiredDifficulty(params, lastBits, first,
		first.Add(100*params.TargetTimespan))
	if atClamp != pastClamp {
		t.Fatalf("adjustment beyond the clamp must not change the result: %#x vs %#x",
			atClamp, pastClamp)
	}
}

func TestCalcNextRequiredDifficultyCapsAtPowLimit(t *testing.T) {
	params := &chaincfg.MainNetParams
	first := time.Unix(1_000_000, 0)
	last := first.Add(time.Duration(params.RetargetAdjustmentFactor) * params.TargetTimespan)

	// Starting from the limit itself, any easing must stay capped there.
	got := CalcNextRequiredDifficulty(params, params.PowLimitBits, first, last)
	if got != params.PowLimitBits {
		t.Fatalf("target must cap at the proof of work limit: got %#x want %#x",
			got, params.PowLimitBits)
	}
}

func TestCalcNextRequiredDifficultyNoRetargeting(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	first := time.Unix(1_000_000, 0)

	const lastBits = 0x207fffff
	got := CalcNextRequiredDifficulty(params, lastBits, first, first.Add(100*params.TargetTimespan))
	if got != lastBits {
		t.Fatalf("regtest never retargets: got %#x want %#x", got, lastBits)
	}
}
