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

// CommandSize is the fixed size in bytes of a message command field, zero
// padded ASCII.
const CommandSize = 12

// MessageHeaderSize is the number of bytes in a P2P message envelope:
// magic(4) || command(12) || length(4) || checksum(4).
const MessageHeaderSize = 4 + CommandSize + 4 + 4

// Command strings for the handshake messages this package frames. The
// executor/core doesn't need a full command registry; only the ones the
// handshake state machine cares about are named here.
const (
	CmdVersion = "version"
	CmdVerAck  = "verack"
	CmdPing    = "ping"
	CmdPong    = "pong"
)

// MessageHeader holds the fixed envelope that precedes every P2P message
// payload: magic(4) || command(12) || length(4) ||
// checksum(4 = first 4 bytes of dSHA256(payload)).
type MessageHeader struct {
	Magic    BitcoinNet
	Command  string
	Length   uint32
	Checksum [4]byte
}

// checksum computes the first four bytes of dSHA256(payload), the
// consensus-defined message checksum.
func checksum(payload []byte) [4]byte {
	h := chainhash.DoubleHashB(payload)
	var sum [4]byte
	copy(sum[:], h[:4])
	return sum
}

// WriteMessage serializes a command and payload into the full envelope +
// payload wire form and writes it to w. The command is truncated/padded to
// CommandSize ASCII bytes; a command longer than that is an error.
func WriteMessage(w io.Writer, magic BitcoinNet, command string, payload []byte) error {
	if len(command) > CommandSize {
		return fmt.Errorf("command %q is longer than max length of %d",
			command, CommandSize)
	}
	if len(payload) > MaxMessagePayload {
		return fmt.Errorf("message payload is too large - encoded %d bytes, "+
			"but maximum message payload is %d bytes", len(payload),
			MaxMessagePayload)
	}

	var hdr [MessageHeaderSize]byte
	binaryPutUint32(hdr[0:4], uint32(magic))
	copy(hdr[4:4+CommandSize], command)
	binaryPutUint32(hdr[16:20], uint32(len(payload)))
	sum := checksum(payload)
	copy(hdr[20:24], sum[:])

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadMessageHeader reads and validates a MessageHeader (but not the
// payload) from r. It does not enforce the expected network magic — the
// caller (the peer actor) decides whether a magic mismatch warrants a
// violation and disconnect.
func ReadMessageHeader(r io.Reader) (*MessageHeader, error) {
	var buf [MessageHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	hdr := &MessageHeader{
		Magic:  BitcoinNet(binaryUint32(buf[0:4])),
		Length: binaryUint32(buf[16:20]),
	}
	copy(hdr.Checksum[:], buf[20:24])

	// Command is zero padded ASCII; trim the trailing NULs.
	cmdBytes := buf[4 : 4+CommandSize]
	end := bytes.IndexByte(cmdBytes, 0)
	if end == -1 {
		end = len(cmdBytes)
	}
	hdr.Command = string(cmdBytes[:end])

	if hdr.Length > MaxMessagePayload {
		return nil, messageErr(ErrProtocol, "message length of %d exceeds max payload "+
			"size of %d", hdr.Length, MaxMessagePayload)
	}

	return hdr, nil
}

// ReadMessagePayload reads exactly hdr.Length bytes from r and verifies them
// against hdr.Checksum, returning an ErrProtocol MessageError on mismatch.
func ReadMessagePayload(r io.Reader, hdr *MessageHeader) ([]byte, error) {
	payload := make([]byte, hdr.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	got := checksum(payload)
	if got != hdr.Checksum {
		return nil, messageErr(ErrProtocol, "payload checksum failed - header "+
			"indicates %x, but actual checksum is %x", hdr.Checksum, got)
	}
	return payload, nil
}

func binaryPutUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func binaryUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
