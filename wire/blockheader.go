// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// BlockHeaderLen is the fixed on-wire size of a BlockHeader in bytes:
// version(4) || prevBlock(32) || merkleRoot(32) || timestamp(4) ||
// bits(4) || nonce(4).
const BlockHeaderLen = 80

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// Hash of the previous block header in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created. This is, unfortunately, encoded as a
	// uint32 on the wire and therefore is limited to 2106.
	Timestamp time.Time

	// Difficulty target for the block, encoded in the compact "nBits"
	// representation.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root hash, difficulty bits, and nonce used to
// generate the block with defaults for the remaining fields.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash,
	bits uint32, nonce uint32) *BlockHeader {

	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := make([]byte, 0, BlockHeaderLen)
	buf = appendBlockHeader(buf, h)
	return chainhash.DoubleHashH(buf)
}

// Deserialize decodes a block header from r into the receiver using the
// exact 80-byte encoding.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	var buf [BlockHeaderLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	return readBlockHeaderBytes(buf[:], h)
}

// Serialize encodes a block header from the receiver and writes it to w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	buf := make([]byte, 0, BlockHeaderLen)
	buf = appendBlockHeader(buf, h)
	_, err := w.Write(buf)
	return err
}

func appendBlockHeader(buf []byte, h *BlockHeader) []byte {
	var tmp [4]byte

	binaryPutUint32(tmp[:], uint32(h.Version))
	buf = append(buf, tmp[:]...)

	buf = append(buf, h.PrevBlock[:]...)
	buf = append(buf, h.MerkleRoot[:]...)

	binaryPutUint32(tmp[:], uint32(h.Timestamp.Unix()))
	buf = append(buf, tmp[:]...)

	binaryPutUint32(tmp[:], h.Bits)
	buf = append(buf, tmp[:]...)

	binaryPutUint32(tmp[:], h.Nonce)
	buf = append(buf, tmp[:]...)

	return buf
}

func readBlockHeaderBytes(buf []byte, h *BlockHeader) error {
	h.Version = int32(binaryUint32(buf[0:4]))
	copy(h.PrevBlock[:], buf[4:36])
	copy(h.MerkleRoot[:], buf[36:68])
	h.Timestamp = time.Unix(int64(binaryUint32(buf[68:72])), 0)
	h.Bits = binaryUint32(buf[72:76])
	h.Nonce = binaryUint32(buf[76:80])
	return nil
}
