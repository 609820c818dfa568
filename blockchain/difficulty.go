// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"time"

	"github.com/btcweave/corevm/chaincfg"
)

var (
	// bigZero is 0 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigZero = big.NewInt(0)

	// bigOne is 1 represented as a big.Int.
	bigOne = big.NewInt(1)
)

// CompactToBig converts a compact representation of a whole number N to an
// unsigned 32-bit number as used in the difficulty bits field of a block
// header: the last byte is the exponent, the other three bytes
// are the mantissa. The decoded result is `mantissa * 256^(exponent-3)`.
//
// This is the equivalent of IEEE754 floating point with a base of 256 and
// only 24 bits of precision, which matches Bitcoin's target representation
// exactly — including its ability to represent supernormal-but-invalid
// targets that CheckProofOfWork rejects separately.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}

	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number, the inverse of CompactToBig.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))

	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}

	return compact
}

// CalcWork calculates a work value from difficulty bits, used to compare
// chains with differing amounts of accumulated proof of work. The return
// value is a convenient representation for performing big integer
// accumulation: 2^256 / (target + 1), the same metric Bitcoin Core uses.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}

	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(oneLsh256, denominator)
}

// oneLsh256 is 1 shifted left 256 bits, used by CalcWork.
var oneLsh256 = new(big.Int).Lsh(bigOne, 256)

// CalcNextRequiredDifficulty calculates the required difficulty for the
// block immediately after a retarget boundary, given the difficulty bits of
// the last block in the window and the timestamps of the first and last
// blocks in it. It is a pure function of those inputs: the caller (which
// owns the chain index this package deliberately does not) is responsible
// for sampling the window.
func CalcNextRequiredDifficulty(params *chaincfg.Params, lastBits uint32,
	firstBlockTime, lastBlockTime time.Time) uint32 {

	if params.PoWNoRetargeting {
		return lastBits
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	targetTimespan := int64(params.TargetTimespan / time.Second)
	adjustmentFactor := params.RetargetAdjustmentFactor
	minRetargetTimespan := targetTimespan / adjustmentFactor
	maxRetargetTimespan := targetTimespan * adjustmentFactor

	actualTimespan := lastBlockTime.Unix() - firstBlockTime.Unix()
	adjustedTimespan := actualTimespan
	if actualTimespan < minRetargetTimespan {
		adjustedTimespan = minRetargetTimespan
	} else if actualTimespan > maxRetargetTimespan {
		adjustedTimespan = maxRetargetTimespan
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	// The result uses integer division which means it will be slightly
	// rounded down. Bitcoind also uses integer division to calculate this
	// result.
	oldTarget := CompactToBig(lastBits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	// Limit new value to the proof of work limit.
	if newTarget.Cmp(params.PowLimit) > 0 {
		newTarget.Set(params.PowLimit)
	}

	return BigToCompact(newTarget)
}

// CheckProofOfWork verifies that the proof of work carried by a block's
// target (decoded from bits) is within the allowed limit for the active
// network and that the block's hash, interpreted as a big-endian number,
// does not exceed the target — rejecting negative targets
// outright.
func CheckProofOfWork(hash [32]byte, bits uint32, powLimit *big.Int) error {
	target := CompactToBig(bits)

	if target.Sign() <= 0 {
		return ruleError(ErrNegativeTarget,
			"block target difficulty is too low (zero or negative)")
	}
	if target.Cmp(powLimit) > 0 {
		return ruleError(ErrUnexpectedDifficulty,
			"block target difficulty is higher than max of "+powLimit.String())
	}

	// Reverse hash bytes to interpret the 32-byte digest as a big-endian
	// number — block hashes are conventionally displayed and compared
	// big-endian despite being computed and serialized little-endian.
	var reversed [32]byte
	for i, b := range hash {
		reversed[31-i] = b
	}
	hashNum := new(big.Int).SetBytes(reversed[:])

	if hashNum.Cmp(target) > 0 {
		return ruleError(ErrHighHash,
			"block hash of "+hashNum.String()+" is higher than expected "+
				"max of "+target.String())
	}

	return nil
}
