// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool defines the boundary to a transaction-pool admission
// policy. Pool bookkeeping and relay policy live outside this module; the
// core only consults a policy through this interface when deciding whether
// a transaction should be handed onward.
package mempool

import (
	"github.com/btcweave/corevm/wire"
)

// AdmissionPolicy decides whether a consensus-valid transaction is also
// acceptable to the pool. A rejection here is policy, not consensus: the
// transaction could still appear in a mined block.
type AdmissionPolicy interface {
	// Accept reports whether tx may enter the pool, with a human-readable
	// reason when it may not.
	Accept(tx *wire.MsgTx) (bool, string)
}
