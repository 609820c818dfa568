// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/btcweave/corevm/chaincfg"
)

func TestMemBlockStoreRoundTrip(t *testing.T) {
	store := NewMemBlockStore()
	header := &chaincfg.MainNetParams.GenesisBlock.Header

	hash := header.BlockHash()
	if _, ok := store.HeaderByHash(&hash); ok {
		t.Fatalf("empty store must not return a header")
	}

	if err := store.PutHeader(header); err != nil {
		t.Fatalf("PutHeader: %v", err)
	}
	got, ok := store.HeaderByHash(&hash)
	if !ok {
		t.Fatalf("stored header not found by its hash")
	}
	if got.BlockHash() != hash {
		t.Fatalf("returned header hashes to %s, want %s", got.BlockHash(), hash)
	}

	// Storing the same header again is idempotent.
	if err := store.PutHeader(header); err != nil {
		t.Fatalf("re-storing same header: %v", err)
	}
}

func TestMemBlockStoreReturnsCopy(t *testing.T) {
	store := NewMemBlockStore()
	header := &chaincfg.MainNetParams.GenesisBlock.Header
	if err := store.PutHeader(header); err != nil {
		t.Fatalf("PutHeader: %v", err)
	}

	hash := header.BlockHash()
	got, _ := store.HeaderByHash(&hash)
	got.Nonce++

	again, _ := store.HeaderByHash(&hash)
	if again.Nonce != header.Nonce {
		t.Fatalf("mutating a returned header must not affect the store")
	}
}
