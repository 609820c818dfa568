// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/wire"
)

const (
	// taprootLeafVersion is the tapscript leaf version. Script-path spends
	// are not checked against it: every leaf executes as tapscript.
	taprootLeafVersion = 0xc0

	// controlBlockBaseSize is a control block's fixed-size prefix: the
	// leaf version/parity byte plus the 32-byte internal key.
	controlBlockBaseSize = 33

	// controlBlockNodeSize is the size of each Merkle branch hash
	// appended to the control block's base.
	controlBlockNodeSize = 32

	// maxControlBlockSize allows for the maximum Merkle proof depth
	// BIP341 permits, 128 levels.
	maxControlBlockSize = controlBlockBaseSize + controlBlockNodeSize*128
)

// ControlBlock is a parsed BIP341 control block, accompanying a tapscript
// leaf's witness to prove that leaf is actually committed to by the
// taproot output key.
type ControlBlock struct {
	// LeafVersion is the tapscript leaf version, the high 7 bits of the
	// control block's first byte.
	LeafVersion byte

	// OutputKeyYIsOdd records the output key's parity, the low bit of
	// the control block's first byte.
	OutputKeyYIsOdd bool

	// InternalKey is the 32-byte x-only internal public key the taproot
	// output key was tweaked from.
	InternalKey []byte

	// InlineScript is the tapscript leaf script the witness's second-to-
	// last item contains; recorded here for TapLeafHash convenience.
	InlineScript []byte

	// MerkleBranch holds the sequence of 32-byte sibling hashes proving
	// InlineScript's inclusion in the taproot commitment tree.
	MerkleBranch []chainhash.Hash
}

// ParseControlBlock parses a BIP341 control block and the tapscript leaf it
// accompanies. The control block's length must be 33+32k bytes for some
// 0 <= k <= 128.
func ParseControlBlock(controlBlock, leafScript []byte) (ControlBlock, error) {
	if len(controlBlock) < controlBlockBaseSize {
		return ControlBlock{}, scriptError(ErrTaprootControlBlockInvalid, "control block too short")
	}
	if len(controlBlock) > maxControlBlockSize {
		return ControlBlock{}, scriptError(ErrTaprootControlBlockInvalid, "control block too long")
	}
	remainder := len(controlBlock) - controlBlockBaseSize
	if remainder%controlBlockNodeSize != 0 {
		return ControlBlock{}, scriptError(ErrTaprootControlBlockInvalid,
			"control block length is not 33 plus a multiple of 32")
	}

	firstByte := controlBlock[0]
	cb := ControlBlock{
		LeafVersion:     firstByte &^ 0x01,
		OutputKeyYIsOdd: firstByte&0x01 == 0x01,
		InternalKey:     controlBlock[1:33],
		InlineScript:    leafScript,
	}

	numBranches := remainder / controlBlockNodeSize
	cb.MerkleBranch = make([]chainhash.Hash, numBranches)
	for i := 0; i < numBranches; i++ {
		off := controlBlockBaseSize + i*controlBlockNodeSize
		copy(cb.MerkleBranch[i][:], controlBlock[off:off+controlBlockNodeSize])
	}

	return cb, nil
}

// tapLeafHash computes the tagged hash identifying a tapscript leaf,
// TapLeaf = taggedHash("TapLeaf", leafVersion || compactSize(script) || script).
func tapLeafHash(leafVersion byte, script []byte) chainhash.Hash {
	var buf bytes.Buffer
	buf.WriteByte(leafVersion)
	_ = wire.WriteCompactInt(&buf, uint64(len(script)))
	buf.Write(script)
	return *chainhash.TaggedHash(chainhash.TagTapLeaf, buf.Bytes())
}

// tapBranchHash computes the tagged hash of an internal Merkle node from
// its two children, sorted lexicographically per BIP341.
func tapBranchHash(a, b chainhash.Hash) chainhash.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return *chainhash.TaggedHash(chainhash.TagTapBranch, a[:], b[:])
}

// VerifyTaprootCommitment recomputes the Merkle root above cb.InlineScript
// from cb's control block and checks it against outputKey (the 32-byte
// x-only taproot output key taken from the scriptPubKey), per BIP341's
// script-path spending validation.
func VerifyTaprootCommitment(cb ControlBlock, outputKey []byte) (bool, error) {
	leafHash := tapLeafHash(cb.LeafVersion, cb.InlineScript)

	root := leafHash
	for _, sibling := range cb.MerkleBranch {
		root = tapBranchHash(root, sibling)
	}

	tweaked, parityIsOdd, err := tweakTaprootOutputKey(cb.InternalKey, root)
	if err != nil {
		return false, err
	}
	if parityIsOdd != cb.OutputKeyYIsOdd {
		return false, nil
	}

	return bytes.Equal(tweaked, outputKey), nil
}

// tweakTaprootOutputKey applies the BIP341 output-key tweak to an x-only
// internal key given a taptweak (here, the Merkle root above a tapscript
// leaf, or the all-zero hash for a key-path-only output): it lifts the
// internal key to the point with even Y, adds tweak*G, and returns the
// resulting key's 32-byte x-only serialization plus its Y parity.
func tweakTaprootOutputKey(internalKey []byte, merkleRoot chainhash.Hash) (tweaked []byte, yIsOdd bool, err error) {
	internalPubKey, err := schnorr.ParsePubKey(internalKey)
	if err != nil {
		return nil, false, scriptError(ErrTaprootControlBlockInvalid, "invalid internal key: "+err.Error())
	}

	tapTweak := chainhash.TaggedHash(
		chainhash.TagTapTweak, schnorr.SerializePubKey(internalPubKey), merkleRoot[:],
	)

	var tweakScalar btcec.ModNScalar
	tweakScalar.SetBytes((*[32]byte)(tapTweak))

	var internalPoint btcec.JacobianPoint
	internalPubKey.AsJacobian(&internalPoint)

	var tweakPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&tweakScalar, &tweakPoint)

	var outputPoint btcec.JacobianPoint
	btcec.AddNonConst(&internalPoint, &tweakPoint, &outputPoint)
	outputPoint.ToAffine()

	outputKey := btcec.NewPublicKey(&outputPoint.X, &outputPoint.Y)
	return schnorr.SerializePubKey(outputKey), outputPoint.Y.IsOdd(), nil
}
