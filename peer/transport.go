// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"io"

	"github.com/btcsuite/btcd/v2transport"
	"github.com/btcweave/corevm/wire"
)

// Transport frames outbound payloads and parses inbound ones, hiding
// whether the underlying connection speaks the plaintext v1 envelope or
// BIP324's encrypted v2 protocol from the handshake state machine.
type Transport interface {
	WriteMessage(command string, payload []byte) error
	ReadMessage() (command string, payload []byte, err error)
}

// v1Transport is the original, unauthenticated framing: a magic/command/
// length/checksum header followed by the raw payload.
type v1Transport struct {
	conn  io.ReadWriter
	magic wire.BitcoinNet
}

// NewV1Transport wraps conn in the plaintext v1 message framing.
func NewV1Transport(conn io.ReadWriter, magic wire.BitcoinNet) Transport {
	return &v1Transport{conn: conn, magic: magic}
}

func (t *v1Transport) WriteMessage(command string, payload []byte) error {
	return wire.WriteMessage(t.conn, t.magic, command, payload)
}

func (t *v1Transport) ReadMessage() (string, []byte, error) {
	hdr, err := wire.ReadMessageHeader(t.conn)
	if err != nil {
		return "", nil, err
	}
	if hdr.Magic != t.magic {
		return "", nil, &wire.MessageError{Kind: wire.ErrProtocol,
			Description: "unexpected network magic " + hdr.Magic.String()}
	}
	payload, err := wire.ReadMessagePayload(t.conn, hdr)
	if err != nil {
		return "", nil, err
	}
	return hdr.Command, payload, nil
}

// v2Transport wraps a v2transport.Session negotiated via BIP324, framing
// each message as a length-prefixed ciphertext packet instead of the v1
// header.
type v2Transport struct {
	session *v2transport.Session
}

func (t *v2Transport) WriteMessage(command string, payload []byte) error {
	return t.session.WritePacket(append([]byte(command+"\x00"), payload...))
}

func (t *v2Transport) ReadMessage() (string, []byte, error) {
	packet, err := t.session.ReadPacket()
	if err != nil {
		return "", nil, err
	}
	for i, b := range packet {
		if b == 0 {
			return string(packet[:i]), packet[i+1:], nil
		}
	}
	return "", nil, io.ErrUnexpectedEOF
}

// NegotiateTransport attempts the BIP324 v2 handshake over conn, falling
// back to the plaintext v1 envelope when the remote peer doesn't support
// it (or the handshake otherwise fails) — the same progressive-downgrade
// behavior real nodes use to stay compatible with pre-v2 peers.
func NegotiateTransport(conn io.ReadWriter, magic wire.BitcoinNet, initiator bool) Transport {
	rwc, ok := conn.(io.ReadWriteCloser)
	if !ok {
		return NewV1Transport(conn, magic)
	}

	session, err := v2transport.Handshake(rwc, initiator)
	if err != nil {
		log.Debugf("v2 transport negotiation failed, falling back to v1: %v", err)
		return NewV1Transport(conn, magic)
	}
	return &v2Transport{session: session}
}
