// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"encoding/json"
	"testing"

	"github.com/btcweave/corevm/peer"
)

func TestClientSubscribesNoFilterMeansEverything(t *testing.T) {
	c := &client{}
	if !c.subscribes(TopicPeer) {
		t.Fatalf("client with no topic filter must receive every topic")
	}
	if !c.subscribes(TopicBlock) {
		t.Fatalf("client with no topic filter must receive every topic")
	}
}

func TestClientSubscribesWithFilter(t *testing.T) {
	c := &client{topics: map[Topic]struct{}{TopicBlock: {}}}
	if c.subscribes(TopicPeer) {
		t.Fatalf("client filtered to block topic must not receive peer notifications")
	}
	if !c.subscribes(TopicBlock) {
		t.Fatalf("client filtered to block topic must receive block notifications")
	}
}

func TestNotificationMarshalsExpectedShape(t *testing.T) {
	n := Notification{Topic: TopicBlock, Kind: "connected", Payload: 42}
	raw, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["topic"] != "block" || decoded["kind"] != "connected" {
		t.Fatalf("unexpected shape: %s", raw)
	}
}

func TestHubPublishDropsWhenBufferFull(t *testing.T) {
	h := &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan Notification, 1),
		quit:      make(chan struct{}),
	}
	h.Publish(Notification{Topic: TopicPeer, Kind: "a"})
	// Buffer is now full; this must not block.
	h.Publish(Notification{Topic: TopicPeer, Kind: "b"})

	select {
	case n := <-h.broadcast:
		if n.Kind != "a" {
			t.Fatalf("expected first notification to have been buffered, got %q", n.Kind)
		}
	default:
		t.Fatalf("expected buffered notification")
	}
}

func TestPeerEventKindNamesCoverAllEventKinds(t *testing.T) {
	for kind := peer.EventRemoteAddr; kind <= peer.EventDisconnected; kind++ {
		if _, ok := peerEventKindNames[kind]; !ok {
			t.Fatalf("peer.EventKind %d has no name mapping", kind)
		}
	}
}
