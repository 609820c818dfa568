// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/btcsuite/go-socks/socks"
	"github.com/decred/dcrd/lru"
)

// Dialer abstracts how an outbound connection to a peer address is
// established, so the handshake state machine stays agnostic to whether
// the connection goes out directly or through a Tor SOCKS5 proxy.
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

// directDialer dials outbound connections plainly, via net.Dial.
type directDialer struct{}

func (directDialer) Dial(network, addr string) (net.Conn, error) {
	return net.Dial(network, addr)
}

// NewDirectDialer returns a Dialer that connects without a proxy.
func NewDirectDialer() Dialer {
	return directDialer{}
}

// socksDialer routes outbound connections through a SOCKS5 proxy, the
// standard way a node dials .onion addresses over Tor.
type socksDialer struct {
	proxy *socks.Proxy
}

// NewSOCKSDialer returns a Dialer that connects through the SOCKS5 proxy
// at proxyAddr, authenticating with user/pass if either is non-empty.
func NewSOCKSDialer(proxyAddr, user, pass string) Dialer {
	return &socksDialer{proxy: &socks.Proxy{
		Addr:         proxyAddr,
		Username:     user,
		Password:     pass,
		TorIsolation: false,
	}}
}

func (d *socksDialer) Dial(network, addr string) (net.Conn, error) {
	return d.proxy.Dial(network, addr)
}

// selfConnectCacheSize bounds the recently-sent-nonce LRU: large enough to
// catch a self-connect race across the handful of outbound dials a node
// issues in a short window, small enough that memory use stays flat under
// churn.
const selfConnectCacheSize = 50

// NonceCache is the well-known btcd anti-self-connect cache: before
// dialing, a node records the nonce it's about to send; when a version
// message arrives carrying a nonce already in the cache, the connection is
// this node talking to itself and should be dropped.
type NonceCache struct {
	cache lru.Cache
}

// NewNonceCache constructs an empty, bounded self-connect nonce cache.
func NewNonceCache() *NonceCache {
	return &NonceCache{cache: lru.NewCache(selfConnectCacheSize)}
}

// NewOutboundNonce generates a random nonce for an outbound version
// message and records it for self-connect detection.
func (c *NonceCache) NewOutboundNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("peer: generating nonce: %w", err)
	}
	nonce := binary.LittleEndian.Uint64(buf[:])
	c.cache.Add(nonce)
	return nonce, nil
}

// IsSelfConnect reports whether nonce matches one this node itself sent.
func (c *NonceCache) IsSelfConnect(nonce uint64) bool {
	return c.cache.Contains(nonce)
}
