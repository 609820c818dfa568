// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"testing"

	"github.com/btcweave/corevm/wire"
)

func TestHandleVersionFirstFromRemote(t *testing.T) {
	n := New("10.0.0.1:8333")
	n.HandleVersion(&wire.MsgVersion{ProtocolVersion: 70016, Nonce: 1})
	if n.HandshakeState() != HandshakeReceivedVersion {
		t.Fatalf("expected ReceivedVersion, got %s", n.HandshakeState())
	}
}

func TestHandleVersionOutOfOrderAfterFinished(t *testing.T) {
	n := New("10.0.0.1:8333")
	n.HandleSentVersion()
	n.HandleVersion(&wire.MsgVersion{ProtocolVersion: 70016, Nonce: 1})
	n.HandleVerAck()

	n.HandleVersion(&wire.MsgVersion{ProtocolVersion: 70016, Nonce: 2})
	if n.Violation() != ViolationMedium {
		t.Fatalf("expected medium violation for duplicate version, got %d", n.Violation())
	}
	if n.HandshakeState() != HandshakeFinished {
		t.Fatalf("out-of-order message must not change handshake state")
	}
}

func TestSelfConnectNonceCache(t *testing.T) {
	c := NewNonceCache()
	nonce, err := c.NewOutboundNonce()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsSelfConnect(nonce) {
		t.Fatalf("expected nonce to be recognized as self-connect")
	}
	if c.IsSelfConnect(nonce + 1) {
		t.Fatalf("unrelated nonce should not be flagged")
	}
}
