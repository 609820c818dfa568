// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// KeyProvider is the narrow slice of a wallet this package is allowed to
// see: a lookup from a HASH160 key commitment to the public key behind it.
// Script execution itself never needs it (the pubkey always arrives on the
// stack or in the witness); it exists for callers assembling a spend for a
// template whose key lives outside the script, and keeps wallet/key
// management behind an interface rather than a dependency.
type KeyProvider interface {
	// PubKeyByHash160 returns the public key whose HASH160 equals hash,
	// or (nil, false) when the provider does not hold it.
	PubKeyByHash160(hash [20]byte) (*btcec.PublicKey, bool)
}
