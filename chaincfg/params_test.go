// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestRegisteredNetworksHaveDistinctMagics(t *testing.T) {
	nets := map[string]uint32{
		"mainnet":    uint32(MainNetParams.Net),
		"testnet":    uint32(TestNetParams.Net),
		"signet":     uint32(SigNetParams.Net),
		"regression": uint32(RegressionNetParams.Net),
	}
	seen := make(map[uint32]string)
	for name, magic := range nets {
		if other, ok := seen[magic]; ok {
			t.Fatalf("%s and %s share magic %#x", name, other, magic)
		}
		seen[magic] = name
	}
}

func TestDeploymentBitNumbersAreDistinctPerNetwork(t *testing.T) {
	for _, params := range []*Params{&MainNetParams, &TestNetParams, &SigNetParams, &RegressionNetParams} {
		seen := make(map[uint8]int)
		for id := range params.Deployments {
			if id == DeploymentTestDummy {
				continue
			}
			bit := params.Deployments[id].BitNumber
			if prior, ok := seen[bit]; ok {
				t.Fatalf("%s: deployments %d and %d both use bit %d", params.Name, prior, id, bit)
			}
			seen[bit] = id
		}
	}
}

func TestGenesisBlockHashMatchesRegisteredParams(t *testing.T) {
	for _, params := range []*Params{&MainNetParams, &TestNetParams, &SigNetParams, &RegressionNetParams} {
		got := params.GenesisBlock.BlockHash()
		if got != *params.GenesisHash {
			t.Fatalf("%s: computed genesis hash %s does not match registered GenesisHash %s",
				params.Name, got, params.GenesisHash)
		}
	}
}
