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

// TxVersion is the default transaction version this package emits.
const TxVersion = 1

// MaxTxInSequenceNum is the maximum sequence number an input can have, which
// disables both relative locktime and the signal for opt-in replacement.
const MaxTxInSequenceNum uint32 = 0xffffffff

// witnessMarker/witnessFlag are the two bytes that appear immediately after
// the version field when a transaction carries witness data, per BIP144.
const (
	witnessMarker = 0x00
	witnessFlag   = 0x01
)

// MaxTxInPerMessage / MaxTxOutPerMessage bound CompactInt-prefixed vector
// reads so a malicious length prefix can't force an unbounded allocation.
const (
	MaxTxInPerMessage  = (MaxMessagePayload / 41) + 1
	MaxTxOutPerMessage = (MaxMessagePayload / 9) + 1
)

// OutPoint identifies a transaction output being spent by a TxIn.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new OutPoint referencing the given hash/index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

func readOutPoint(r io.Reader, op *OutPoint) error {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return err
	}
	return readElement(r, &op.Index)
}

func writeOutPoint(w io.Writer, op *OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return writeElement(w, op.Index)
}

// TxWitness is the witness stack carried by a single input: one item per
// element pushed by the spender, separate from the legacy SignatureScript.
type TxWitness [][]byte

// SerializeSize returns the number of bytes the witness stack occupies on
// the wire, including its own CompactInt item count and per-item lengths.
func (w TxWitness) SerializeSize() int {
	n := CompactIntSerializeSize(uint64(len(w)))
	for _, item := range w {
		n += CompactIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

func readTxWitness(r io.Reader) (TxWitness, error) {
	count, err := ReadCompactInt(r)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	witness := make(TxWitness, count)
	for i := range witness {
		item, err := ReadVarBytes(r, MaxMessagePayload, "witness item")
		if err != nil {
			return nil, err
		}
		witness[i] = item
	}
	return witness, nil
}

func writeTxWitness(w io.Writer, witness TxWitness) error {
	if err := WriteCompactInt(w, uint64(len(witness))); err != nil {
		return err
	}
	for _, item := range witness {
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// TxIn defines a transaction input, spending a single previous output.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// NewTxIn returns a new TxIn with the given prevout and signature script,
// defaulting sequence to MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness TxWitness) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}
	sigScript, err := ReadVarBytes(r, MaxMessagePayload, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = sigScript
	return readElement(r, &ti.Sequence)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return writeElement(w, ti.Sequence)
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new TxOut with the given value and locking script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

func readTxOut(r io.Reader, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}
	pkScript, err := ReadVarBytes(r, MaxMessagePayload, "pk script")
	if err != nil {
		return err
	}
	to.PkScript = pkScript
	return nil
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

// MsgTx is a bitcoin transaction: version, a non-empty input list, a
// non-empty output list, lock-time, and an optional per-input witness
// list present only when the segwit marker/flag follow the version field.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new, empty transaction with the given version.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn appends ti to the transaction's input list.
func (msg *MsgTx) AddTxIn(ti *TxIn) { msg.TxIn = append(msg.TxIn, ti) }

// AddTxOut appends to to the transaction's output list.
func (msg *MsgTx) AddTxOut(to *TxOut) { msg.TxOut = append(msg.TxOut, to) }

// HasWitness reports whether any input carries witness data.
func (msg *MsgTx) HasWitness() bool {
	for _, ti := range msg.TxIn {
		if len(ti.Witness) > 0 {
			return true
		}
	}
	return false
}

// Deserialize reads the legacy-or-witness transaction encoding from r,
// auto-detecting the segwit marker/flag bytes after the version field. A
// transaction with no inputs or no outputs is rejected;
// both lists must be non-empty.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	if err := readElement(r, &msg.Version); err != nil {
		return err
	}

	count, err := ReadCompactInt(r)
	if err != nil {
		return err
	}

	var flag [1]byte
	hasWitness := false
	if count == 0 {
		// Possible segwit marker: count == 0x00 is ambiguous with a
		// legitimate (but disallowed) zero-input transaction, so peek the
		// flag byte to disambiguate, matching the real protocol's marker
		// (0x00) / flag (0x01) convention.
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return err
		}
		if flag[0] != witnessFlag {
			return fmt.Errorf("witness flag byte must be 0x%02x, got 0x%02x",
				witnessFlag, flag[0])
		}
		hasWitness = true

		count, err = ReadCompactInt(r)
		if err != nil {
			return err
		}
	}

	if count == 0 {
		return fmt.Errorf("transaction has no inputs")
	}
	if count > MaxTxInPerMessage {
		return fmt.Errorf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count, MaxTxInPerMessage)
	}

	txIns := make([]TxIn, count)
	msg.TxIn = make([]*TxIn, count)
	for i := range txIns {
		ti := &txIns[i]
		msg.TxIn[i] = ti
		if err := readTxIn(r, ti); err != nil {
			return err
		}
	}

	outCount, err := ReadCompactInt(r)
	if err != nil {
		return err
	}
	if outCount == 0 {
		return fmt.Errorf("transaction has no outputs")
	}
	if outCount > MaxTxOutPerMessage {
		return fmt.Errorf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", outCount, MaxTxOutPerMessage)
	}

	txOuts := make([]TxOut, outCount)
	msg.TxOut = make([]*TxOut, outCount)
	for i := range txOuts {
		to := &txOuts[i]
		msg.TxOut[i] = to
		if err := readTxOut(r, to); err != nil {
			return err
		}
	}

	if hasWitness {
		for _, ti := range msg.TxIn {
			witness, err := readTxWitness(r)
			if err != nil {
				return err
			}
			ti.Witness = witness
		}
	}

	return readElement(r, &msg.LockTime)
}

// SerializeNoWitness writes the no-witness ("legacy") encoding of msg to w,
// used both as the TxID preimage (always) and as the full wire form for
// transactions with no witness data.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	if err := writeElement(w, msg.Version); err != nil {
		return err
	}
	if err := WriteCompactInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}
	if err := WriteCompactInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}
	return writeElement(w, msg.LockTime)
}

// Serialize writes the witness encoding of msg to w if any input carries
// witness data, else it's identical to SerializeNoWitness.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if !msg.HasWitness() {
		return msg.SerializeNoWitness(w)
	}

	if err := writeElement(w, msg.Version); err != nil {
		return err
	}
	if _, err := w.Write([]byte{witnessMarker, witnessFlag}); err != nil {
		return err
	}
	if err := WriteCompactInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}
	if err := WriteCompactInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}
	for _, ti := range msg.TxIn {
		if err := writeTxWitness(w, ti.Witness); err != nil {
			return err
		}
	}
	return writeElement(w, msg.LockTime)
}

// TxHash returns the double-SHA256 of the no-witness serialization — the
// txid. It is invariant under witness presence or absence.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	// SerializeNoWitness over a bytes.Buffer never errors.
	_ = msg.SerializeNoWitness(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash returns the double-SHA256 of the full (witness-inclusive)
// serialization — the wtxid. For a transaction with no witness data this is
// identical to TxHash.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy returns a deep copy of msg.
func (msg *MsgTx) Copy() *MsgTx {
	clone := &MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
	}
	for i, ti := range msg.TxIn {
		newIn := *ti
		if ti.SignatureScript != nil {
			newIn.SignatureScript = append([]byte(nil), ti.SignatureScript...)
		}
		if ti.Witness != nil {
			newIn.Witness = make(TxWitness, len(ti.Witness))
			for j, item := range ti.Witness {
				newIn.Witness[j] = append([]byte(nil), item...)
			}
		}
		clone.TxIn[i] = &newIn
	}
	for i, to := range msg.TxOut {
		newOut := *to
		if to.PkScript != nil {
			newOut.PkScript = append([]byte(nil), to.PkScript...)
		}
		clone.TxOut[i] = &newOut
	}
	return clone
}
