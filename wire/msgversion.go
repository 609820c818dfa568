// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message.
const MaxUserAgentLen = 256

// MsgVersion implements the version handshake message: the first message a
// peer sends to announce its protocol version, services, and identity.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       int64
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	DisableRelayTx  bool
}

// BtcEncode serializes the version message to w.
func (m *MsgVersion) BtcEncode(w io.Writer) error {
	if len(m.UserAgent) > MaxUserAgentLen {
		return fmt.Errorf("user agent too long [len %d, max %d]",
			len(m.UserAgent), MaxUserAgentLen)
	}

	if err := writeElement(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := writeElement(w, uint64(m.Services)); err != nil {
		return err
	}
	if err := writeElement(w, m.Timestamp); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &m.AddrMe, false); err != nil {
		return err
	}
	if err := writeElement(w, m.Nonce); err != nil {
		return err
	}
	if err := WriteVarBytes(w, []byte(m.UserAgent)); err != nil {
		return err
	}
	if err := writeElement(w, m.LastBlock); err != nil {
		return err
	}
	return writeElement(w, !m.DisableRelayTx)
}

// BtcDecode deserializes the version message from r.
func (m *MsgVersion) BtcDecode(r io.Reader) error {
	if err := readElement(r, &m.ProtocolVersion); err != nil {
		return err
	}
	var services uint64
	if err := readElement(r, &services); err != nil {
		return err
	}
	m.Services = ServiceFlag(services)

	if err := readElement(r, &m.Timestamp); err != nil {
		return err
	}
	if err := readNetAddress(r, &m.AddrYou, false); err != nil {
		return err
	}
	if err := readNetAddress(r, &m.AddrMe, false); err != nil {
		return err
	}
	if err := readElement(r, &m.Nonce); err != nil {
		return err
	}

	ua, err := ReadVarBytes(r, MaxUserAgentLen, "user agent")
	if err != nil {
		return err
	}
	m.UserAgent = string(ua)

	if err := readElement(r, &m.LastBlock); err != nil {
		return err
	}

	var relay bool
	if err := readElement(r, &relay); err != nil {
		// relay flag was added in BIP0037; an EOF here is acceptable for
		// pre-BIP0037 peers and defaults relay to enabled.
		if err == io.EOF {
			m.DisableRelayTx = false
			return nil
		}
		return err
	}
	m.DisableRelayTx = !relay
	return nil
}

// Command returns the command string for a version message.
func (m *MsgVersion) Command() string { return CmdVersion }

// MsgVerAck implements the verack handshake acknowledgment. It carries no
// payload.
type MsgVerAck struct{}

// Command returns the command string for a verack message.
func (m *MsgVerAck) Command() string { return CmdVerAck }

// BtcEncode serializes (nothing) for the verack message.
func (m *MsgVerAck) BtcEncode(w io.Writer) error { return nil }

// BtcDecode deserializes (nothing) for the verack message.
func (m *MsgVerAck) BtcDecode(r io.Reader) error { return nil }

// EncodeMessage is a convenience wrapper combining BtcEncode with the P2P
// envelope for messages that implement the minimal Message interface.
type encodable interface {
	BtcEncode(io.Writer) error
	Command() string
}

// EncodeMessage serializes msg's payload and writes the full envelope +
// payload to w under the given network magic.
func EncodeMessage(w io.Writer, magic BitcoinNet, msg encodable) error {
	var buf bytes.Buffer
	if err := msg.BtcEncode(&buf); err != nil {
		return err
	}
	return WriteMessage(w, magic, msg.Command(), buf.Bytes())
}
