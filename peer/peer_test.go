// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/btcweave/corevm/wire"
)

// scriptedTransport feeds Run a fixed sequence of inbound messages and
// records every command the actor writes.
type scriptedTransport struct {
	mu    sync.Mutex
	wrote []string
	reads chan inboundMsg
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{reads: make(chan inboundMsg, 8)}
}

func (t *scriptedTransport) WriteMessage(command string, payload []byte) error {
	t.mu.Lock()
	t.wrote = append(t.wrote, command)
	t.mu.Unlock()
	return nil
}

func (t *scriptedTransport) ReadMessage() (string, []byte, error) {
	m, ok := <-t.reads
	if !ok {
		return "", nil, io.EOF
	}
	return m.command, m.payload, m.err
}

func (t *scriptedTransport) wroteCommands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.wrote...)
}

func encodeVersion(t *testing.T, msg *wire.MsgVersion) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := msg.BtcEncode(&buf); err != nil {
		t.Fatalf("encode version: %v", err)
	}
	return buf.Bytes()
}

func TestPeerRunCompletesHandshake(t *testing.T) {
	transport := newScriptedTransport()
	transport.reads <- inboundMsg{
		command: wire.CmdVersion,
		payload: encodeVersion(t, &wire.MsgVersion{ProtocolVersion: 70016, Nonce: 7}),
	}
	transport.reads <- inboundMsg{command: wire.CmdVerAck}

	p := NewPeer("10.0.0.1:8333", transport, NewNonceCache(), Config{
		UserAgent: "/test:0.0.1/",
	})
	sub := p.Status().Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Observe progress strictly through the event channel; the status
	// fields belong to the actor goroutine while Run is live.
	deadline := time.After(5 * time.Second)
waitFinished:
	for {
		select {
		case ev := <-sub:
			if ev.Kind == EventDisconnected {
				t.Fatalf("unexpected disconnect: %s", ev.Reason)
			}
			if ev.Kind == EventHandshakeState && ev.Value == HandshakeFinished {
				break waitFinished
			}
		case <-deadline:
			t.Fatalf("handshake did not finish")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v on cancellation", err)
	}

	if p.Status().HandshakeState() != HandshakeFinished {
		t.Fatalf("expected HandshakeFinished, got %s", p.Status().HandshakeState())
	}

	wrote := transport.wroteCommands()
	if len(wrote) != 2 || wrote[0] != wire.CmdVersion || wrote[1] != wire.CmdVerAck {
		t.Fatalf("expected [version verack] written, got %v", wrote)
	}
}

func TestPeerRunHandshakeTimeout(t *testing.T) {
	transport := newScriptedTransport()

	p := NewPeer("10.0.0.1:8333", transport, NewNonceCache(), Config{
		HandshakeTimeout: 20 * time.Millisecond,
	})
	sub := p.Status().Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !p.Status().Disconnected() {
		t.Fatalf("expected disconnect after handshake deadline")
	}
	if got := p.Status().Violation(); got != ViolationBig {
		t.Fatalf("expected Big violation for handshake timeout, got %d", got)
	}
	if got := drainDisconnects(t, sub); got != 1 {
		t.Fatalf("expected exactly 1 disconnect event, got %d", got)
	}
}

func TestPeerRunHostileFramingError(t *testing.T) {
	transport := newScriptedTransport()
	transport.reads <- inboundMsg{
		err: &wire.MessageError{Kind: wire.ErrProtocol, Description: "bad magic"},
	}

	p := NewPeer("10.0.0.1:8333", transport, NewNonceCache(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := p.Status().Violation(); got != ViolationBig {
		t.Fatalf("expected Big violation for hostile framing, got %d", got)
	}
	if !p.Status().Disconnected() {
		t.Fatalf("expected disconnect after hostile framing error")
	}
}
