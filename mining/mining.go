// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining defines the boundary to a proof-of-work search worker.
// The search itself is pluggable and lives outside this module; the core
// only ever drives a Worker through this interface.
package mining

import (
	"context"
	"math/big"

	"github.com/btcweave/corevm/wire"
)

// Worker searches for a nonce that makes a block header hash at or below
// the target. Implementations must check ctx between work units and return
// (0, false) promptly once it is cancelled, without treating cancellation
// as an error: a cancelled search simply found nothing.
type Worker interface {
	Search(ctx context.Context, header *wire.BlockHeader, target *big.Int) (nonce uint32, found bool)
}
