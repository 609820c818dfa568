// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"strings"
	"time"

	"github.com/btcsuite/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	topics     map[Topic]struct{}
}

func newClient(h *Hub, conn *websocket.Conn, topicsParam string) *client {
	c := &client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, 32),
		remoteAddr: conn.RemoteAddr().String(),
	}
	if topicsParam != "" {
		c.topics = make(map[Topic]struct{})
		for _, t := range strings.Split(topicsParam, ",") {
			c.topics[Topic(strings.TrimSpace(t))] = struct{}{}
		}
	}
	return c
}

// subscribes reports whether the client wants notifications for topic. A
// client with no topic filter receives everything.
func (c *client) subscribes(topic Topic) bool {
	if c.topics == nil {
		return true
	}
	_, ok := c.topics[topic]
	return ok
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains and discards client input, keeping the connection's read
// deadline alive via pong handling. Clients are publish-only subscribers;
// they have nothing to say back.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
