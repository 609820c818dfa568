// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxBlockTxCount bounds the CompactInt-prefixed transaction count read
// from a block message so an attacker-controlled prefix cannot trigger an
// unbounded allocation before the transactions themselves are checked.
const MaxBlockTxCount = (MaxMessagePayload / 60) + 1

// MsgBlock is a bitcoin block: a BlockHeader followed by a CompactInt-
// prefixed, non-empty list of transactions whose first entry is the
// coinbase.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction appends a transaction to the block's transaction list.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash computes the block identifier hash for this block's header.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// Deserialize decodes a block, including all its transactions, from r.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	if err := msg.Header.Deserialize(r); err != nil {
		return err
	}

	count, err := ReadCompactInt(r)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("block has no transactions")
	}
	if count > MaxBlockTxCount {
		return fmt.Errorf("too many transactions to fit into a "+
			"max message size [count %d, max %d]", count, MaxBlockTxCount)
	}

	msg.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := &MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}

	return nil
}

// Serialize encodes the block, including all its transactions, and writes
// the result to w. Each transaction is serialized in its witness form when
// it carries witness data, matching the encoding used for the block's
// wtxid-based witness commitment rather than its legacy merkle root.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	if err := msg.Header.Serialize(w); err != nil {
		return err
	}
	if err := WriteCompactInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// SerializeSize returns the number of bytes Serialize would write for msg.
func (msg *MsgBlock) SerializeSize() int {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return buf.Len()
}

// TxHashes returns the txid (no-witness hash) of every transaction in the
// block, in order — the leaves consumed by CalcMerkleRoot.
func (msg *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, len(msg.Transactions))
	for i, tx := range msg.Transactions {
		hashes[i] = tx.TxHash()
	}
	return hashes
}
