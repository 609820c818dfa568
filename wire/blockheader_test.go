// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

func TestBlockHeaderSerializeRoundTrip(t *testing.T) {
	prev := chainhash.Hash{1, 2, 3}
	root := chainhash.Hash{4, 5, 6}
	hdr := &BlockHeader{
		Version:    1,
		PrevBlock:  prev,
		MerkleRoot: root,
		Timestamp:  time.Unix(1231006505, 0),
		Bits:       0x1d00ffff,
		Nonce:      2083236893,
	}

	var buf bytes.Buffer
	if err := hdr.Serialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != BlockHeaderLen {
		t.Fatalf("expected %d bytes, got %d", BlockHeaderLen, buf.Len())
	}

	var decoded BlockHeader
	if err := decoded.Deserialize(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded.Version != hdr.Version || decoded.Bits != hdr.Bits || decoded.Nonce != hdr.Nonce {
		t.Fatalf("scalar fields did not round trip: got %+v", decoded)
	}
	if decoded.PrevBlock != hdr.PrevBlock || decoded.MerkleRoot != hdr.MerkleRoot {
		t.Fatalf("hash fields did not round trip")
	}
	if !decoded.Timestamp.Equal(hdr.Timestamp) {
		t.Fatalf("timestamp did not round trip: got %v want %v", decoded.Timestamp, hdr.Timestamp)
	}
}

// TestBlockHeaderDecodesPublishedSampleFields exercises the sample header
// published alongside this format: version 00e0ff3f, timestamp c6b1715e,
// bits 19011117, nonce 696a432a. The prevBlock and merkleRoot fields are
// only given with their leading and trailing bytes elided by the source
// that published the sample, so the exact 32 bytes needed to reproduce its
// hash 0000000000000000000d558fdcdde616702d1f91d6c8567a89be99ff9869012d
// cannot be recovered; this test decodes only the fully-specified scalar
// fields and does not assert a hash match.
func TestBlockHeaderDecodesPublishedSampleFields(t *testing.T) {
	buf := make([]byte, 0, BlockHeaderLen)
	buf = append(buf, 0x00, 0xe0, 0xff, 0x3f) // version
	buf = append(buf, make([]byte, 32)...)    // prevBlock: not fully specified
	buf = append(buf, make([]byte, 32)...)    // merkleRoot: not fully specified
	buf = append(buf, 0xc6, 0xb1, 0x71, 0x5e) // timestamp
	buf = append(buf, 0x19, 0x01, 0x11, 0x17) // bits
	buf = append(buf, 0x69, 0x6a, 0x43, 0x2a) // nonce

	var hdr BlockHeader
	if err := hdr.Deserialize(bytes.NewReader(buf)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hdr.Version != 1073733632 {
		t.Fatalf("expected version 1073733632, got %d", hdr.Version)
	}
	if hdr.Bits != 0x17110119 {
		t.Fatalf("expected bits 0x17110119, got 0x%08x", hdr.Bits)
	}
	if hdr.Nonce != 709061225 {
		t.Fatalf("expected nonce 709061225, got %d", hdr.Nonce)
	}
	wantTime := time.Unix(1584509382, 0)
	if !hdr.Timestamp.Equal(wantTime) {
		t.Fatalf("expected timestamp %v, got %v", wantTime, hdr.Timestamp)
	}
}

func TestBlockHashChangesWithNonce(t *testing.T) {
	hdr := &BlockHeader{Version: 1, Timestamp: time.Unix(1231006505, 0), Bits: 0x1d00ffff}
	h1 := hdr.BlockHash()
	hdr.Nonce = 1
	h2 := hdr.BlockHash()
	if h1 == h2 {
		t.Fatalf("changing the nonce must change the block hash")
	}
}
