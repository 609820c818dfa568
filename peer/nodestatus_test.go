// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"testing"

	"github.com/btcweave/corevm/wire"
)

// drainDisconnects counts EventDisconnected notifications already queued
// on ch. Safe to call only after every publishing call has returned, since
// NodeStatus.publish sends synchronously into a buffered channel.
func drainDisconnects(t *testing.T, ch <-chan Event) int {
	t.Helper()
	count := 0
	for {
		select {
		case ev := <-ch:
			if ev.Kind == EventDisconnected {
				count++
			}
		default:
			return count
		}
	}
}

func TestBumpViolationFiresDisconnectExactlyOnce(t *testing.T) {
	n := New("127.0.0.1:8333")
	sub := n.Subscribe()

	n.BumpViolation(ViolationMedium)
	n.BumpViolation(ViolationBig)
	n.BumpViolation(ViolationBig)

	if !n.Disconnected() {
		t.Fatalf("expected disconnected once violation reaches threshold")
	}

	// Further bumps must not re-fire the event.
	n.BumpViolation(ViolationSmall)
	n.BumpViolation(ViolationSmall)

	if got := drainDisconnects(t, sub); got != 1 {
		t.Fatalf("expected exactly 1 disconnect event, got %d", got)
	}
}

func TestBumpViolationAnySequenceSummingTo100DisconnectsOnce(t *testing.T) {
	sequences := [][]int{
		{ViolationSmall, ViolationSmall, ViolationSmall, ViolationSmall,
			ViolationSmall, ViolationSmall, ViolationSmall, ViolationSmall,
			ViolationSmall, ViolationSmall},
		{ViolationBig, ViolationBig},
		{ViolationMedium, ViolationMedium, ViolationMedium, ViolationMedium, ViolationMedium},
		{ViolationBig, ViolationMedium, ViolationMedium, ViolationSmall, ViolationSmall},
	}

	for _, seq := range sequences {
		n := New("127.0.0.1:8333")
		sub := n.Subscribe()
		for _, delta := range seq {
			n.BumpViolation(delta)
		}
		if !n.Disconnected() {
			t.Fatalf("sequence %v: expected disconnect", seq)
		}
		if got := drainDisconnects(t, sub); got != 1 {
			t.Fatalf("sequence %v: expected exactly 1 disconnect event, got %d", seq, got)
		}
	}
}

func TestSetSendCompactVerIsMonotonic(t *testing.T) {
	n := New("127.0.0.1:8333")
	n.SetSendCompactVer(2)
	n.SetSendCompactVer(1)
	if n.SendCompactVer() != 2 {
		t.Fatalf("expected lesser assignment to be ignored, got %d", n.SendCompactVer())
	}
	n.SetSendCompactVer(3)
	if n.SendCompactVer() != 3 {
		t.Fatalf("expected greater assignment to take effect, got %d", n.SendCompactVer())
	}
}

func TestSetSendCompactVerPublishesDistinctEventKind(t *testing.T) {
	n := New("127.0.0.1:8333")
	sub := n.Subscribe()

	n.SetSendCompact(true)
	n.SetSendCompactVer(2)

	var gotSendCompact, gotSendCompactVer bool
	for i := 0; i < 2; i++ {
		ev := <-sub
		switch ev.Kind {
		case EventSendCompact:
			gotSendCompact = true
		case EventSendCompactVer:
			gotSendCompactVer = true
		}
	}
	if !gotSendCompact || !gotSendCompactVer {
		t.Fatalf("expected both EventSendCompact and EventSendCompactVer, got sendCompact=%v sendCompactVer=%v",
			gotSendCompact, gotSendCompactVer)
	}
}

func TestHandshakeFullSequence(t *testing.T) {
	n := New("127.0.0.1:8333")

	if n.HandshakeState() != HandshakeNone {
		t.Fatalf("expected initial state None, got %s", n.HandshakeState())
	}

	n.HandleSentVersion()
	if n.HandshakeState() != HandshakeSentVersion {
		t.Fatalf("expected SentVersion, got %s", n.HandshakeState())
	}

	n.HandleVersion(&wire.MsgVersion{
		ProtocolVersion: 70016,
		UserAgent:       "/corevm:0.1.0/",
		Nonce:           12345,
	})
	if n.HandshakeState() != HandshakeVersionReceived {
		t.Fatalf("expected VersionReceived, got %s", n.HandshakeState())
	}
	if n.UserAgent() != "/corevm:0.1.0/" {
		t.Fatalf("version fields not applied")
	}

	n.HandleVerAck()
	if n.HandshakeState() != HandshakeFinished {
		t.Fatalf("expected Finished, got %s", n.HandshakeState())
	}
	if n.Violation() != 0 {
		t.Fatalf("well-ordered handshake should not accrue violations")
	}
}

func TestOutOfOrderVerAckAddsMediumViolation(t *testing.T) {
	n := New("127.0.0.1:8333")
	n.HandleVerAck()
	if n.Violation() != ViolationMedium {
		t.Fatalf("expected medium violation for out-of-order verack, got %d", n.Violation())
	}
}

func TestHostileMessageAddsBigViolation(t *testing.T) {
	n := New("127.0.0.1:8333")
	n.HandleHostileMessage()
	if n.Violation() != ViolationBig {
		t.Fatalf("expected big violation, got %d", n.Violation())
	}
}
