// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto holds small cryptographic collaborators consumed by the
// rest of the module but not tied to any one package's core data model.
package crypto

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
)

// AggregateKeys combines pubKeys into a single MuSig2 aggregated public
// key, the Taproot-adjacent operation that lets an n-of-n multisig spend
// look like a single-key Taproot output on chain.
//
// The keys are first sorted lexicographically by compressed serialization
// (BIP-327 KeySort), so the result does not depend on the caller's argument
// order. Each key is then weighted by a coefficient H(L || pk_i), where L
// is every participant's serialized key concatenated in sorted order, per
// the MuSig2 key-aggregation algorithm: this is what makes the scheme
// secure against rogue-key attacks, where a participant picks their own
// key as a function of the others' to bias the aggregate.
func AggregateKeys(pubKeys []*btcec.PublicKey) (*btcec.PublicKey, error) {
	if len(pubKeys) == 0 {
		return nil, fmt.Errorf("musig2: no public keys provided")
	}
	if len(pubKeys) == 1 {
		return pubKeys[0], nil
	}

	pubKeys = sortKeys(pubKeys)
	coeffs := keyAggCoefficients(pubKeys)

	var sum btcec.JacobianPoint
	for i, pk := range pubKeys {
		var point btcec.JacobianPoint
		pk.AsJacobian(&point)

		var scalar btcec.ModNScalar
		scalar.SetByteSlice(coeffs[i].Bytes())

		var term btcec.JacobianPoint
		btcec.ScalarMultNonConst(&scalar, &point, &term)

		if i == 0 {
			sum = term
			continue
		}
		var next btcec.JacobianPoint
		btcec.AddNonConst(&sum, &term, &next)
		sum = next
	}

	sum.ToAffine()
	return btcec.NewPublicKey(&sum.X, &sum.Y), nil
}

// sortKeys returns pubKeys ordered lexicographically by compressed
// serialization, the canonical BIP-327 KeySort ordering applied before L
// is hashed. The input slice is left untouched.
func sortKeys(pubKeys []*btcec.PublicKey) []*btcec.PublicKey {
	sorted := append([]*btcec.PublicKey(nil), pubKeys...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].SerializeCompressed(),
			sorted[j].SerializeCompressed()) < 0
	})
	return sorted
}

// keyAggCoefficients computes the per-key weighting coefficients
// H(L || pk_i) mod N described by AggregateKeys, where L is the
// concatenation of every participant's compressed public key in sorted
// order. The returned coefficients align index-wise with the sorted key
// list.
func keyAggCoefficients(pubKeys []*btcec.PublicKey) []*big.Int {
	pubKeys = sortKeys(pubKeys)

	var allKeys []byte
	for _, pk := range pubKeys {
		allKeys = append(allKeys, pk.SerializeCompressed()...)
	}

	coeffs := make([]*big.Int, len(pubKeys))
	for i, pk := range pubKeys {
		h := sha256.New()
		h.Write(allKeys)
		h.Write(pk.SerializeCompressed())

		coeffs[i] = new(big.Int).SetBytes(h.Sum(nil))
		coeffs[i].Mod(coeffs[i], btcec.S256().N)
	}
	return coeffs
}
