// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"sync"
	"time"

	"github.com/btcweave/corevm/wire"
)

// HandshakeState is a peer's position in the version/verack handshake.
type HandshakeState int

const (
	HandshakeNone HandshakeState = iota
	HandshakeSentVersion
	HandshakeReceivedVersion
	HandshakeVersionReceived
	HandshakeFinished
)

func (s HandshakeState) String() string {
	switch s {
	case HandshakeNone:
		return "None"
	case HandshakeSentVersion:
		return "SentVersion"
	case HandshakeReceivedVersion:
		return "ReceivedVersion"
	case HandshakeVersionReceived:
		return "VersionReceived"
	case HandshakeFinished:
		return "Finished"
	}
	return "Unknown"
}

// Violation thresholds, inclusive: reaching Big from a single bump is
// allowed without disconnecting, but the running score crossing
// DisconnectThreshold always disconnects.
const (
	ViolationSmall  = 10
	ViolationMedium = 20
	ViolationBig    = 50

	DisconnectThreshold = 100
)

// NodeStatus is the per-peer record described by the handshake/violation
// state machine: owned exclusively by its peer actor, observed by everyone
// else strictly through Subscribe's change-notification channel.
type NodeStatus struct {
	remoteAddr      string
	protocolVersion int32
	services        wire.ServiceFlag
	nonce           uint64
	userAgent       string
	startHeight     int32
	relayTx         bool
	feeFilter       int64
	sendCompact     bool
	sendCompactVer  uint64
	lastSeen        time.Time
	handshakeState  HandshakeState
	violation       int
	disconnected    bool

	subsMu sync.Mutex
	subs   []chan Event
}

// New constructs a NodeStatus for a freshly accepted or dialed connection.
func New(remoteAddr string) *NodeStatus {
	return &NodeStatus{remoteAddr: remoteAddr}
}

// Subscribe returns a channel that receives every subsequent change event,
// including the terminal Disconnected event. The channel is buffered;
// callers that fall behind lose no events (the buffer is generous) but
// must eventually drain it or the actor's publish will block.
func (n *NodeStatus) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	n.subsMu.Lock()
	n.subs = append(n.subs, ch)
	n.subsMu.Unlock()
	return ch
}

func (n *NodeStatus) publish(ev Event) {
	n.subsMu.Lock()
	defer n.subsMu.Unlock()
	for _, ch := range n.subs {
		ch <- ev
	}
}

// RemoteAddr, ProtocolVersion, ... are read-only snapshots of current
// field values. Per the ownership rule these are safe to call from the
// owning actor goroutine without locking; other goroutines should prefer
// Subscribe.
func (n *NodeStatus) RemoteAddr() string             { return n.remoteAddr }
func (n *NodeStatus) ProtocolVersion() int32         { return n.protocolVersion }
func (n *NodeStatus) Services() wire.ServiceFlag     { return n.services }
func (n *NodeStatus) Nonce() uint64                  { return n.nonce }
func (n *NodeStatus) UserAgent() string              { return n.userAgent }
func (n *NodeStatus) StartHeight() int32             { return n.startHeight }
func (n *NodeStatus) RelayTx() bool                  { return n.relayTx }
func (n *NodeStatus) FeeFilter() int64               { return n.feeFilter }
func (n *NodeStatus) SendCompact() bool              { return n.sendCompact }
func (n *NodeStatus) SendCompactVer() uint64         { return n.sendCompactVer }
func (n *NodeStatus) LastSeen() time.Time            { return n.lastSeen }
func (n *NodeStatus) HandshakeState() HandshakeState { return n.handshakeState }
func (n *NodeStatus) Violation() int                 { return n.violation }
func (n *NodeStatus) Disconnected() bool             { return n.disconnected }

func (n *NodeStatus) SetProtocolVersion(v int32) {
	n.protocolVersion = v
	n.publish(Event{Kind: EventProtocolVersion, Value: v})
}

func (n *NodeStatus) SetServices(v wire.ServiceFlag) {
	n.services = v
	n.publish(Event{Kind: EventServices, Value: v})
}

func (n *NodeStatus) SetNonce(v uint64) {
	n.nonce = v
	n.publish(Event{Kind: EventNonce, Value: v})
}

func (n *NodeStatus) SetUserAgent(v string) {
	n.userAgent = v
	n.publish(Event{Kind: EventUserAgent, Value: v})
}

func (n *NodeStatus) SetStartHeight(v int32) {
	n.startHeight = v
	n.publish(Event{Kind: EventStartHeight, Value: v})
}

func (n *NodeStatus) SetRelayTx(v bool) {
	n.relayTx = v
	n.publish(Event{Kind: EventRelayTx, Value: v})
}

func (n *NodeStatus) SetFeeFilter(v int64) {
	n.feeFilter = v
	n.publish(Event{Kind: EventFeeFilter, Value: v})
}

func (n *NodeStatus) SetSendCompact(v bool) {
	n.sendCompact = v
	n.publish(Event{Kind: EventSendCompact, Value: v})
}

// SetSendCompactVer assigns the negotiated sendcmpct version, monotonically:
// an assignment with a lesser value than the current one is silently
// ignored.
func (n *NodeStatus) SetSendCompactVer(v uint64) {
	if v < n.sendCompactVer {
		return
	}
	n.sendCompactVer = v
	n.publish(Event{Kind: EventSendCompactVer, Value: v})
}

func (n *NodeStatus) StampLastSeen(t time.Time) {
	n.lastSeen = t
	n.publish(Event{Kind: EventLastSeen, Value: t})
}

// setHandshakeState is the single place the handshake field is mutated, so
// handshake.go's transition table is the only caller.
func (n *NodeStatus) setHandshakeState(s HandshakeState) {
	n.handshakeState = s
	n.publish(Event{Kind: EventHandshakeState, Value: s})
}

// BumpViolation adds delta to the running violation score, firing exactly
// one Disconnected event the instant the score reaches DisconnectThreshold.
// Once disconnected, further bumps still update the score (the invariant
// only bars a second disconnect event, not further mutation).
func (n *NodeStatus) BumpViolation(delta int) {
	n.violation += delta
	n.publish(Event{Kind: EventViolation, Value: n.violation})
	if n.violation >= DisconnectThreshold {
		n.disconnect("violation score reached disconnect threshold")
	}
}

// SetDisconnected marks the peer disconnected. A transition from false to
// true fires the Disconnected event; setting it to true when already true
// is a no-op (the event has already fired once).
func (n *NodeStatus) SetDisconnected() {
	n.disconnect("explicit disconnect")
}

func (n *NodeStatus) disconnect(reason string) {
	if n.disconnected {
		return
	}
	n.disconnected = true
	n.publish(Event{Kind: EventDisconnected, Reason: reason})
}
