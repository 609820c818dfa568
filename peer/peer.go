// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/btcweave/corevm/wire"
)

// DefaultHandshakeTimeout bounds how long the version/verack exchange may
// take. A peer that has not reached HandshakeFinished when it expires gets
// a Big violation and is disconnected.
const DefaultHandshakeTimeout = 60 * time.Second

// Config carries the per-connection knobs for a peer actor.
type Config struct {
	// UserAgent is advertised in the outbound version message.
	UserAgent string

	// Services is the service bitset advertised in the outbound version
	// message.
	Services wire.ServiceFlag

	// StartHeight is the chain height advertised in the outbound version
	// message.
	StartHeight int32

	// HandshakeTimeout overrides DefaultHandshakeTimeout when positive.
	HandshakeTimeout time.Duration
}

// Peer is the actor that owns one connection's NodeStatus. All status
// mutation happens on the goroutine running Run; everything else observes
// through Status().Subscribe().
type Peer struct {
	cfg       Config
	status    *NodeStatus
	transport Transport
	nonces    *NonceCache
}

// NewPeer wires a freshly negotiated transport into a peer actor. The
// actor does nothing until Run is called.
func NewPeer(remoteAddr string, transport Transport, nonces *NonceCache, cfg Config) *Peer {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &Peer{
		cfg:       cfg,
		status:    New(remoteAddr),
		transport: transport,
		nonces:    nonces,
	}
}

// Status returns the NodeStatus this actor owns. Callers outside the actor
// goroutine must treat it as read-only and observe changes via Subscribe.
func (p *Peer) Status() *NodeStatus {
	return p.status
}

// inboundMsg is one read-pump result: a framed message or the read error
// that ended the pump.
type inboundMsg struct {
	command string
	payload []byte
	err     error
}

// Run sends our version message and then drives the actor loop: inbound
// messages feed the handshake state machine, the handshake deadline is
// enforced, and the loop exits once the peer disconnects or ctx is
// cancelled. Cancellation is a clean outcome, not an error.
func (p *Peer) Run(ctx context.Context) error {
	nonce, err := p.nonces.NewOutboundNonce()
	if err != nil {
		return err
	}

	versionMsg := &wire.MsgVersion{
		ProtocolVersion: int32(wire.ProtocolVersion),
		Services:        p.cfg.Services,
		Nonce:           nonce,
		UserAgent:       p.cfg.UserAgent,
		LastBlock:       p.cfg.StartHeight,
	}
	var buf bytes.Buffer
	if err := versionMsg.BtcEncode(&buf); err != nil {
		return fmt.Errorf("encode version: %w", err)
	}
	if err := p.transport.WriteMessage(wire.CmdVersion, buf.Bytes()); err != nil {
		return fmt.Errorf("send version: %w", err)
	}
	p.status.HandleSentVersion()

	msgCh := make(chan inboundMsg)
	go p.readPump(ctx, msgCh)

	handshakeTimer := time.NewTimer(p.cfg.HandshakeTimeout)
	defer handshakeTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.status.SetDisconnected()
			return nil

		case <-handshakeTimer.C:
			if p.status.HandshakeState() != HandshakeFinished {
				log.Warnf("%s: handshake deadline exceeded", p.status.RemoteAddr())
				p.status.HandleHandshakeTimeout()
			}

		case msg := <-msgCh:
			if msg.err != nil {
				// Framing-level hostility (bad magic, oversized length,
				// checksum mismatch) is a Big violation; anything else is
				// the connection dying under us.
				if wire.IsErrorKind(msg.err, wire.ErrProtocol) ||
					wire.IsErrorKind(msg.err, wire.ErrMalformed) {
					p.status.HandleHostileMessage()
				}
				p.status.SetDisconnected()
				return nil
			}
			p.handleMessage(msg.command, msg.payload)
		}

		if p.status.Disconnected() {
			return nil
		}
	}
}

func (p *Peer) handleMessage(command string, payload []byte) {
	switch command {
	case wire.CmdVersion:
		remoteVersion := &wire.MsgVersion{}
		if err := remoteVersion.BtcDecode(bytes.NewReader(payload)); err != nil {
			log.Debugf("%s: bad version payload: %v", p.status.RemoteAddr(), err)
			p.status.HandleHostileMessage()
			return
		}
		if p.nonces.IsSelfConnect(remoteVersion.Nonce) {
			log.Warnf("%s: self connect detected", p.status.RemoteAddr())
			p.status.SetDisconnected()
			return
		}
		p.status.HandleVersion(remoteVersion)
		if p.status.HandshakeState() == HandshakeVersionReceived {
			if err := p.transport.WriteMessage(wire.CmdVerAck, nil); err != nil {
				log.Debugf("%s: send verack: %v", p.status.RemoteAddr(), err)
				p.status.SetDisconnected()
			}
		}

	case wire.CmdVerAck:
		p.status.HandleVerAck()

	default:
		p.status.StampLastSeen(time.Now())
	}
}

// readPump blocks on the transport and forwards each framed message to the
// actor loop. It runs on its own goroutine because transport reads block;
// it never touches the NodeStatus.
func (p *Peer) readPump(ctx context.Context, msgCh chan<- inboundMsg) {
	for {
		command, payload, err := p.transport.ReadMessage()
		select {
		case msgCh <- inboundMsg{command: command, payload: payload, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}
