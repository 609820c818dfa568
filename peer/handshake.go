// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"time"

	"github.com/btcweave/corevm/wire"
)

// HandleVersion advances the handshake on receipt of a version message, or
// records a violation if one arrives out of turn. A version message is
// only legal from HandshakeNone (the peer's first message) or
// HandshakeSentVersion (we sent ours first, now theirs arrives).
func (n *NodeStatus) HandleVersion(msg *wire.MsgVersion) {
	n.StampLastSeen(time.Now())

	switch n.handshakeState {
	case HandshakeNone:
		n.applyVersion(msg)
		n.setHandshakeState(HandshakeReceivedVersion)
	case HandshakeSentVersion:
		n.applyVersion(msg)
		n.setHandshakeState(HandshakeVersionReceived)
	default:
		n.BumpViolation(ViolationMedium)
	}
}

// HandleSentVersion records that we sent our own version message, the
// other half of reaching HandshakeVersionReceived.
func (n *NodeStatus) HandleSentVersion() {
	switch n.handshakeState {
	case HandshakeNone:
		n.setHandshakeState(HandshakeSentVersion)
	case HandshakeReceivedVersion:
		n.setHandshakeState(HandshakeVersionReceived)
	default:
		n.BumpViolation(ViolationMedium)
	}
}

// HandleVerAck advances the handshake on receipt of a verack, legal only
// once both version messages have been exchanged.
func (n *NodeStatus) HandleVerAck() {
	n.StampLastSeen(time.Now())

	if n.handshakeState != HandshakeVersionReceived {
		n.BumpViolation(ViolationMedium)
		return
	}
	n.setHandshakeState(HandshakeFinished)
}

// HandleHandshakeTimeout records the handshake deadline expiring before
// the exchange finished: a Big violation plus an immediate disconnect,
// regardless of the running score.
func (n *NodeStatus) HandleHandshakeTimeout() {
	n.BumpViolation(ViolationBig)
	n.disconnect("handshake deadline exceeded")
}

// HandleHostileMessage records a Big violation for a message that is
// malformed at the framing level: bad network magic, an oversized
// declared length, or a checksum mismatch.
func (n *NodeStatus) HandleHostileMessage() {
	n.BumpViolation(ViolationBig)
}

func (n *NodeStatus) applyVersion(msg *wire.MsgVersion) {
	n.SetProtocolVersion(msg.ProtocolVersion)
	n.SetServices(msg.Services)
	n.SetNonce(msg.Nonce)
	n.SetUserAgent(msg.UserAgent)
	n.SetStartHeight(msg.LastBlock)
	n.SetRelayTx(!msg.DisableRelayTx)
}
