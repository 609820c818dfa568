// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/wire"
)

// BlockStore abstracts the header storage backend the validation functions
// in this package consult. Persistence itself lives outside this module; a
// full node plugs in its database-backed implementation, tests use
// MemBlockStore.
type BlockStore interface {
	// HeaderByHash returns the stored header with the given block hash,
	// or (nil, false) when no such header has been stored.
	HeaderByHash(hash *chainhash.Hash) (*wire.BlockHeader, bool)

	// PutHeader stores header, keyed by its block hash. Storing the same
	// header twice is permitted and idempotent.
	PutHeader(header *wire.BlockHeader) error
}

// MemBlockStore is an in-memory BlockStore. It exists to prove the
// interface is satisfiable and to back tests; it makes no attempt at
// persistence or eviction.
type MemBlockStore struct {
	mtx     sync.RWMutex
	headers map[chainhash.Hash]wire.BlockHeader
}

// NewMemBlockStore returns an empty in-memory header store.
func NewMemBlockStore() *MemBlockStore {
	return &MemBlockStore{headers: make(map[chainhash.Hash]wire.BlockHeader)}
}

// HeaderByHash returns the stored header with the given hash, if any.
func (s *MemBlockStore) HeaderByHash(hash *chainhash.Hash) (*wire.BlockHeader, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	header, ok := s.headers[*hash]
	if !ok {
		return nil, false
	}
	return &header, true
}

// PutHeader stores header keyed by its block hash.
func (s *MemBlockStore) PutHeader(header *wire.BlockHeader) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.headers[header.BlockHash()] = *header
	return nil
}
