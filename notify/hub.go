// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notify exposes peer status and block-validation events over a
// small websocket hub, for monitoring tooling that wants a live feed
// without polling an RPC endpoint.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/btcsuite/websocket"
)

// Topic names the category a Notification belongs to, letting subscribers
// filter the feed without parsing the payload.
type Topic string

const (
	TopicPeer  Topic = "peer"
	TopicBlock Topic = "block"
	TopicTx    Topic = "tx"
)

// Notification is the wire format pushed to every connected client.
type Notification struct {
	Topic   Topic       `json:"topic"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans a stream of Notifications out to every subscribed websocket
// client. The zero value is not usable; construct with NewHub.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	broadcast chan Notification
	quit      chan struct{}
}

// NewHub creates a Hub and starts its broadcast loop in a background
// goroutine. Call Shutdown to stop it.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan Notification, 256),
		quit:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Publish enqueues a notification for delivery to all connected clients.
// Never blocks the caller beyond the channel's buffer: a full buffer drops
// the notification and logs a warning, since notify is best-effort.
func (h *Hub) Publish(n Notification) {
	select {
	case h.broadcast <- n:
	default:
		log.Warnf("notify: broadcast buffer full, dropping %s/%s", n.Topic, n.Kind)
	}
}

// Shutdown stops the broadcast loop and closes every connected client.
func (h *Hub) Shutdown() {
	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case n := <-h.broadcast:
			h.deliver(n)
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				c.close()
			}
			h.clients = nil
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) deliver(n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Errorf("notify: marshal notification: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.subscribes(n.Topic) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			log.Warnf("notify: client %s send buffer full, dropping message", c.remoteAddr)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the incoming request to a websocket connection and
// registers a client for the topics named in the "topics" query parameter
// (comma-separated; empty means all topics).
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("notify: upgrade failed: %v", err)
		return
	}

	c := newClient(h, conn, r.URL.Query().Get("topics"))
	h.register(c)
	go c.writePump()
	go c.readPump()
}
