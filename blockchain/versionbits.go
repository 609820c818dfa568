// Copyright (c) 2016-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcweave/corevm/chaincfg"
	"github.com/btcweave/corevm/wire"
)

const (
	// vbTopBits defines the bits to set in the version to signal that
	// the version bits scheme is being used.
	vbTopBits = 0x20000000

	// vbTopMask is the bitmask to use to determine whether or not the
	// version bits scheme is in use.
	vbTopMask = 0xe0000000

	// vbNumBits is the total number of bits available for use with the
	// version bits scheme.
	vbNumBits = 29
)

// ThresholdState defines the various threshold states used when deciding
// the current rule change deployment state of a given soft-fork, per
// BIP0009.
type ThresholdState byte

const (
	// ThresholdDefined is the first state for each deployment. It is
	// the default state and passed internally.
	ThresholdDefined ThresholdState = iota

	// ThresholdStarted is the state for a deployment once its start time
	// has been reached.
	ThresholdStarted

	// ThresholdLockedIn is the state for a deployment during the retarget
	// period which is after the ThresholdStarted state period and the
	// number of blocks that have voted for the deployment equal or
	// exceed the required number of votes for the deployment.
	ThresholdLockedIn

	// ThresholdActive is the state for a deployment for all blocks after
	// a retarget period in which the deployment was in the
	// ThresholdLockedIn state.
	ThresholdActive

	// ThresholdFailed is the state for a deployment once its expiration
	// time has been reached and it did not reach the ThresholdLockedIn
	// state.
	ThresholdFailed
)

// thresholdStateStrings is a map of ThresholdState values back to their
// constant names for pretty printing.
var thresholdStateStrings = map[ThresholdState]string{
	ThresholdDefined:  "ThresholdDefined",
	ThresholdStarted:  "ThresholdStarted",
	ThresholdLockedIn: "ThresholdLockedIn",
	ThresholdActive:   "ThresholdActive",
	ThresholdFailed:   "ThresholdFailed",
}

// String returns the ThresholdState in human-readable form.
func (t ThresholdState) String() string {
	if s, ok := thresholdStateStrings[t]; ok {
		return s
	}
	return "Unknown ThresholdState"
}

// DeploymentWindow is one confirmation-window's worth of inputs needed to
// advance a deployment's ThresholdState one step: the block version history
// for the window (oldest first), the previous state entering the window,
// and the headers that bookend it — used to evaluate the deployment's
// start/end time rules without a stored chain index.
type DeploymentWindow struct {
	// PrevState is the ThresholdState the deployment was in immediately
	// before this window.
	PrevState ThresholdState

	// WindowStartHeader is the header at the start of this confirmation
	// window, consulted for the deployment's HasStarted/HasEnded checks.
	WindowStartHeader *wire.BlockHeader

	// NextHeight is the height of the first block after this window —
	// used for MinActivationHeight/AlwaysActiveHeight checks.
	NextHeight uint32

	// Versions holds the block.Version field of every block in the
	// window, oldest first.
	Versions []int32
}

// countVotes returns the number of blocks in versions whose version bits
// signal support for the given deployment.
func countVotes(deployment *chaincfg.ConsensusDeployment, versions []int32) uint32 {
	conditionMask := uint32(1) << deployment.BitNumber

	var count uint32
	for _, v := range versions {
		version := uint32(v)
		if version&vbTopMask == vbTopBits && version&conditionMask != 0 {
			count++
		}
	}
	return count
}

// CalcDeploymentThresholdState computes the ThresholdState a deployment
// transitions to after observing one confirmation window, implementing the
// BIP0009 state machine as a pure function over that window's inputs rather
// than a stored, walkable chain index.
//
// Transition rules, mirroring Bitcoin Core's VersionBitsState: Defined moves
// to Started once the window-start header's timestamp crosses the
// deployment's start time, or straight to Failed if the end time has
// already passed by then. Started moves to Failed on timeout, or to
// LockedIn once the window's vote count reaches the activation threshold.
// LockedIn advances to Active on the next window, unless the deployment sets
// a MinActivationHeight that NextHeight has not yet reached, in which case
// it stays LockedIn. Active and Failed are terminal.
func CalcDeploymentThresholdState(
	deployment *chaincfg.ConsensusDeployment,
	params *chaincfg.Params,
	window DeploymentWindow,
) (ThresholdState, error) {

	effectiveHeight := deployment.EffectiveAlwaysActiveHeight()
	if window.NextHeight >= effectiveHeight {
		return ThresholdActive, nil
	}

	switch window.PrevState {
	case ThresholdDefined:
		ended, err := deployment.DeploymentEnder.HasEnded(window.WindowStartHeader)
		if err != nil {
			return ThresholdDefined, err
		}
		if ended {
			return ThresholdFailed, nil
		}

		started, err := deployment.DeploymentStarter.HasStarted(window.WindowStartHeader)
		if err != nil {
			return ThresholdDefined, err
		}
		if started {
			return ThresholdStarted, nil
		}
		return ThresholdDefined, nil

	case ThresholdStarted:
		ended, err := deployment.DeploymentEnder.HasEnded(window.WindowStartHeader)
		if err != nil {
			return ThresholdStarted, err
		}
		if ended {
			return ThresholdFailed, nil
		}

		threshold := params.RuleChangeActivationThreshold
		if deployment.CustomActivationThreshold != 0 {
			threshold = deployment.CustomActivationThreshold
		}

		if countVotes(deployment, window.Versions) >= threshold {
			return ThresholdLockedIn, nil
		}
		return ThresholdStarted, nil

	case ThresholdLockedIn:
		if deployment.MinActivationHeight != 0 &&
			window.NextHeight < deployment.MinActivationHeight {
			return ThresholdLockedIn, nil
		}
		return ThresholdActive, nil

	case ThresholdActive, ThresholdFailed:
		return window.PrevState, nil

	default:
		return ThresholdDefined, nil
	}
}

// CalcNextBlockVersion computes the version a block should signal given the
// ThresholdState of every deployment at that point in the chain: any
// deployment currently Started or LockedIn has its bit set atop the
// version-bits top bits marker.
func CalcNextBlockVersion(params *chaincfg.Params, states [chaincfg.DefinedDeployments]ThresholdState) int32 {
	expectedVersion := uint32(vbTopBits)
	for id := range params.Deployments {
		switch states[id] {
		case ThresholdStarted, ThresholdLockedIn:
			expectedVersion |= uint32(1) << params.Deployments[id].BitNumber
		}
	}
	return int32(expectedVersion)
}

// WarnBit reports whether bit is being signalled by at least the required
// activation threshold of the versions in the window without belonging to
// any currently known deployment — an early warning of an unrecognized
// soft-fork in progress, per the original warnUnknownRuleActivations logic.
func WarnBit(params *chaincfg.Params, bit uint32, versions []int32) bool {
	if bit >= vbNumBits {
		return false
	}
	for _, d := range params.Deployments {
		if d.BitNumber == uint8(bit) {
			return false
		}
	}

	conditionMask := uint32(1) << bit
	var count uint32
	for _, v := range versions {
		version := uint32(v)
		if version&vbTopMask == vbTopBits && version&conditionMask != 0 {
			count++
		}
	}
	return count >= params.RuleChangeActivationThreshold
}
