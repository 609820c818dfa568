// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcweave/corevm/wire"
)

// ConsensusDeploymentEnder determines if a given consensus deployment has
// ended (timed out without locking in) based on the time rules specified in
// BIP0009.
type ConsensusDeploymentEnder interface {
	// HasEnded returns true if the deployment has expired as of the
	// passed window-boundary header.
	HasEnded(header *wire.BlockHeader) (bool, error)
}

// MedianTimeDeploymentEnder is a ConsensusDeploymentEnder that uses a
// block's timestamp to determine deployment timeout.
type MedianTimeDeploymentEnder struct {
	endTime time.Time
}

// NewMedianTimeDeploymentEnder returns a new instance of a
// MedianTimeDeploymentEnder that uses the given time as the activation end
// time.
func NewMedianTimeDeploymentEnder(endTime time.Time) *MedianTimeDeploymentEnder {
	return &MedianTimeDeploymentEnder{endTime: endTime}
}

// HasEnded returns true if the deployment has timed out based on the
// passed header's timestamp.
//
// This is part of the ConsensusDeploymentEnder interface.
func (m *MedianTimeDeploymentEnder) HasEnded(header *wire.BlockHeader) (bool, error) {
	if m.endTime.IsZero() {
		return false, nil
	}
	return !header.Timestamp.Before(m.endTime), nil
}
