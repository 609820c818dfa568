// Copyright (c) 2013-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// ProtocolVersion is the protocol version this package speaks, advertised
// in the outbound version message. 70016 covers every message the
// handshake here exchanges, including sendcmpct version negotiation.
const ProtocolVersion uint32 = 70016

// ServiceFlag identifies services supported by a bitcoin peer. Only the
// flags this module can act on are named; any other bits a peer advertises
// ride along opaquely in NodeStatus and render as hex in String.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a peer is a full node able to serve the
	// entire historical chain.
	SFNodeNetwork ServiceFlag = 1 << 0

	// SFNodeWitness indicates a peer serves blocks and transactions
	// including witness data (BIP144).
	SFNodeWitness ServiceFlag = 1 << 3

	// SFNodeNetworkLimited indicates a peer serves at least the last
	// NodeNetworkLimitedBlockThreshold blocks from its tip (BIP159).
	SFNodeNetworkLimited ServiceFlag = 1 << 10

	// SFNodeP2PV2 indicates a peer accepts BIP324 v2 encrypted transport
	// connections, the signal NegotiateTransport keys off.
	SFNodeP2PV2 ServiceFlag = 1 << 11
)

// NodeNetworkLimitedBlockThreshold is the number of recent blocks a peer
// advertising SFNodeNetworkLimited must be able to serve.
const NodeNetworkLimitedBlockThreshold = 288

// sfStrings maps the named service flags back to their constant names for
// pretty printing.
var sfStrings = map[ServiceFlag]string{
	SFNodeNetwork:        "SFNodeNetwork",
	SFNodeWitness:        "SFNodeWitness",
	SFNodeNetworkLimited: "SFNodeNetworkLimited",
	SFNodeP2PV2:          "SFNodeP2PV2",
}

// orderedSFStrings fixes the order String emits named flags in.
var orderedSFStrings = []ServiceFlag{
	SFNodeNetwork,
	SFNodeWitness,
	SFNodeNetworkLimited,
	SFNodeP2PV2,
}

// HasFlag reports whether every bit of s is set in f.
func (f ServiceFlag) HasFlag(s ServiceFlag) bool {
	return f&s == s
}

// String returns the ServiceFlag in human-readable form: named flags
// joined by "|", with any unnamed remainder appended as hex.
func (f ServiceFlag) String() string {
	if f == 0 {
		return "0x0"
	}

	var names []string
	for _, flag := range orderedSFStrings {
		if f.HasFlag(flag) {
			names = append(names, sfStrings[flag])
			f ^= flag
		}
	}
	if f != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(f), 16))
	}
	return strings.Join(names, "|")
}

// BitcoinNet represents which bitcoin network a message belongs to.
type BitcoinNet uint32

// Constants used to indicate the message bitcoin network. They can also be
// used to seek to the next message when a stream's state is unknown, but
// this package does not provide that functionality since it's generally a
// better idea to simply disconnect clients that are misbehaving over TCP.
const (
	// MainNet represents the main bitcoin network.
	MainNet BitcoinNet = 0xd9b4bef9

	// TestNet represents the test network (version 3).
	TestNet BitcoinNet = 0x0709110b

	// TestNet4 represents the test network (version 4).
	TestNet4 BitcoinNet = 0x283f161c

	// SigNet represents the public default SigNet.
	SigNet BitcoinNet = 0x40CF030A

	// SimNet represents the simulation test network.
	SimNet BitcoinNet = 0x12141c16

	// RegTest represents the regression test network.
	RegTest BitcoinNet = 0xdab5bffa
)

// bnStrings is a map of bitcoin networks back to their constant names for
// pretty printing.
var bnStrings = map[BitcoinNet]string{
	MainNet:  "MainNet",
	TestNet:  "TestNet",
	TestNet4: "TestNet4",
	SigNet:   "SigNet",
	SimNet:   "SimNet",
	RegTest:  "RegTest",
}

// String returns the BitcoinNet in human-readable form.
func (n BitcoinNet) String() string {
	if s, ok := bnStrings[n]; ok {
		return s
	}

	return fmt.Sprintf("Unknown BitcoinNet (%d)", uint32(n))
}
