// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcweave/corevm/wire"
)

// ConsensusDeploymentStarter determines if a given consensus deployment has
// started based on the time rules specified in BIP0009.
type ConsensusDeploymentStarter interface {
	// HasStarted returns true if the deployment has started based on the
	// header of the block at the boundary of a threshold-state window.
	HasStarted(header *wire.BlockHeader) (bool, error)

	// StartTime returns the start time of the deployment.
	StartTime() uint64
}

// MedianTimeDeploymentStarter is a ConsensusDeploymentStarter that uses a
// block's timestamp to determine if a deployment is eligible to start, per
// the original BIP0009 threshold semantics. The window-boundary header's
// timestamp stands in for the chain's median-time-past, which requires a
// stored chain index that the core does not carry.
type MedianTimeDeploymentStarter struct {
	startTime time.Time
}

// NewMedianTimeDeploymentStarter returns a new instance of a
// MedianTimeDeploymentStarter that uses the given time as the activation
// start time.
func NewMedianTimeDeploymentStarter(startTime time.Time) *MedianTimeDeploymentStarter {
	return &MedianTimeDeploymentStarter{startTime: startTime}
}

// HasStarted returns true if the deployment has started based on the passed
// header's timestamp.
//
// This is part of the ConsensusDeploymentStarter interface.
func (m *MedianTimeDeploymentStarter) HasStarted(header *wire.BlockHeader) (bool, error) {
	return !header.Timestamp.Before(m.startTime), nil
}

// StartTime returns the unix timestamp of the start time.
//
// This is part of the ConsensusDeploymentStarter interface.
func (m *MedianTimeDeploymentStarter) StartTime() uint64 {
	return uint64(m.startTime.Unix())
}
