// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randKey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey()
}

func TestAggregateKeysRejectsEmptyInput(t *testing.T) {
	_, err := AggregateKeys(nil)
	assert.Error(t, err)
}

func TestAggregateKeysSingleKeyIsIdentity(t *testing.T) {
	pk := randKey(t)
	agg, err := AggregateKeys([]*btcec.PublicKey{pk})
	require.NoError(t, err)
	assert.True(t, agg.IsEqual(pk), "single-key aggregation must return the key unchanged")
}

func TestAggregateKeysIsOrderIndependent(t *testing.T) {
	a, b, c := randKey(t), randKey(t), randKey(t)

	agg1, err := AggregateKeys([]*btcec.PublicKey{a, b, c})
	require.NoError(t, err)
	agg2, err := AggregateKeys([]*btcec.PublicKey{c, a, b})
	require.NoError(t, err)

	assert.True(t, agg1.IsEqual(agg2),
		"key aggregation must not depend on input order, since L is built from every key regardless of position")
}

func TestAggregateKeysDiffersFromAnyInputKey(t *testing.T) {
	a, b := randKey(t), randKey(t)
	agg, err := AggregateKeys([]*btcec.PublicKey{a, b})
	require.NoError(t, err)

	assert.False(t, agg.IsEqual(a), "aggregated key must not collapse to the first input")
	assert.False(t, agg.IsEqual(b), "aggregated key must not collapse to the second input")
}

func TestAggregateKeysDeterministic(t *testing.T) {
	a, b := randKey(t), randKey(t)
	agg1, err := AggregateKeys([]*btcec.PublicKey{a, b})
	require.NoError(t, err)
	agg2, err := AggregateKeys([]*btcec.PublicKey{a, b})
	require.NoError(t, err)

	assert.True(t, agg1.IsEqual(agg2), "aggregating the same key set twice must produce the same key")
}
