// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import "github.com/btcweave/corevm/peer"

var peerEventKindNames = map[peer.EventKind]string{
	peer.EventRemoteAddr:      "remote_addr",
	peer.EventProtocolVersion: "protocol_version",
	peer.EventServices:        "services",
	peer.EventNonce:           "nonce",
	peer.EventUserAgent:       "user_agent",
	peer.EventStartHeight:     "start_height",
	peer.EventRelayTx:         "relay_tx",
	peer.EventFeeFilter:       "fee_filter",
	peer.EventSendCompact:     "send_compact",
	peer.EventSendCompactVer:  "send_compact_ver",
	peer.EventLastSeen:        "last_seen",
	peer.EventHandshakeState:  "handshake_state",
	peer.EventViolation:       "violation",
	peer.EventDisconnected:    "disconnected",
}

// ForwardPeerEvents drains ch and republishes every event on the hub under
// TopicPeer, tagging each notification with the owning remote address so
// subscribers watching many peers can tell them apart. Runs until ch is
// closed; callers typically pair it with NodeStatus.Subscribe in its own
// goroutine.
func ForwardPeerEvents(h *Hub, remoteAddr string, ch <-chan peer.Event) {
	for ev := range ch {
		kind, ok := peerEventKindNames[ev.Kind]
		if !ok {
			kind = "unknown"
		}
		h.Publish(Notification{
			Topic: TopicPeer,
			Kind:  kind,
			Payload: struct {
				RemoteAddr string      `json:"remote_addr"`
				Value      interface{} `json:"value,omitempty"`
				Reason     string      `json:"reason,omitempty"`
			}{
				RemoteAddr: remoteAddr,
				Value:      ev.Value,
				Reason:     ev.Reason,
			},
		})
	}
}
