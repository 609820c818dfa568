// Copyright (c) 2016-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/btcweave/corevm/chaincfg"
	"github.com/btcweave/corevm/wire"
)

func testDeployment(startTime, endTime time.Time) *chaincfg.ConsensusDeployment {
	return &chaincfg.ConsensusDeployment{
		BitNumber:         1,
		DeploymentStarter: chaincfg.NewMedianTimeDeploymentStarter(startTime),
		DeploymentEnder:   chaincfg.NewMedianTimeDeploymentEnder(endTime),
	}
}

func headerAt(t time.Time) *wire.BlockHeader {
	return &wire.BlockHeader{Timestamp: t}
}

func TestThresholdStateDefinedToStarted(t *testing.T) {
	start := time.Unix(1000, 0)
	end := time.Unix(5000, 0)
	dep := testDeployment(start, end)
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	window := DeploymentWindow{
		PrevState:         ThresholdDefined,
		WindowStartHeader: headerAt(time.Unix(2000, 0)),
		NextHeight:        100,
	}
	state, err := CalcDeploymentThresholdState(dep, params, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != ThresholdStarted {
		t.Fatalf("expected ThresholdStarted, got %s", state)
	}
}

func TestThresholdStateDefinedStaysDefinedBeforeStart(t *testing.T) {
	start := time.Unix(1000, 0)
	end := time.Unix(5000, 0)
	dep := testDeployment(start, end)
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	window := DeploymentWindow{
		PrevState:         ThresholdDefined,
		WindowStartHeader: headerAt(time.Unix(500, 0)),
		NextHeight:        10,
	}
	state, err := CalcDeploymentThresholdState(dep, params, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != ThresholdDefined {
		t.Fatalf("expected ThresholdDefined, got %s", state)
	}
}

func TestThresholdStateStartedToLockedIn(t *testing.T) {
	start := time.Unix(1000, 0)
	end := time.Unix(5000, 0)
	dep := testDeployment(start, end)
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	window := DeploymentWindow{
		PrevState:         ThresholdStarted,
		WindowStartHeader: headerAt(time.Unix(2000, 0)),
		NextHeight:        100,
		Versions:          []int32{0x20000002, 0x20000002, 0x00000000},
	}
	state, err := CalcDeploymentThresholdState(dep, params, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != ThresholdLockedIn {
		t.Fatalf("expected ThresholdLockedIn, got %s", state)
	}
}

func TestThresholdStateStartedStaysStartedBelowThreshold(t *testing.T) {
	start := time.Unix(1000, 0)
	end := time.Unix(5000, 0)
	dep := testDeployment(start, end)
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	window := DeploymentWindow{
		PrevState:         ThresholdStarted,
		WindowStartHeader: headerAt(time.Unix(2000, 0)),
		NextHeight:        100,
		Versions:          []int32{0x20000002, 0x00000000, 0x00000000},
	}
	state, err := CalcDeploymentThresholdState(dep, params, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != ThresholdStarted {
		t.Fatalf("expected ThresholdStarted, got %s", state)
	}
}

func TestThresholdStateStartedToFailedAfterTimeout(t *testing.T) {
	start := time.Unix(1000, 0)
	end := time.Unix(2000, 0)
	dep := testDeployment(start, end)
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	window := DeploymentWindow{
		PrevState:         ThresholdStarted,
		WindowStartHeader: headerAt(time.Unix(3000, 0)),
		NextHeight:        100,
	}
	state, err := CalcDeploymentThresholdState(dep, params, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != ThresholdFailed {
		t.Fatalf("expected ThresholdFailed, got %s", state)
	}
}

func TestThresholdStateLockedInAlwaysAdvancesToActive(t *testing.T) {
	dep := testDeployment(time.Unix(0, 0), time.Unix(1<<40, 0))
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	window := DeploymentWindow{PrevState: ThresholdLockedIn, NextHeight: 1}
	state, err := CalcDeploymentThresholdState(dep, params, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != ThresholdActive {
		t.Fatalf("expected ThresholdActive, got %s", state)
	}
}

func TestThresholdStateTerminalStatesAreSticky(t *testing.T) {
	dep := testDeployment(time.Unix(0, 0), time.Unix(1<<40, 0))
	params := &chaincfg.Params{RuleChangeActivationThreshold: 2}

	for _, terminal := range []ThresholdState{ThresholdActive, ThresholdFailed} {
		window := DeploymentWindow{PrevState: terminal, NextHeight: 1}
		state, err := CalcDeploymentThresholdState(dep, params, window)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state != terminal {
			t.Fatalf("expected terminal state %s to stick, got %s", terminal, state)
		}
	}
}

func TestCalcNextBlockVersionSetsStartedAndLockedInBits(t *testing.T) {
	params := &chaincfg.Params{}
	params.Deployments[chaincfg.DeploymentCSV] = chaincfg.ConsensusDeployment{BitNumber: 0}
	params.Deployments[chaincfg.DeploymentSegwit] = chaincfg.ConsensusDeployment{BitNumber: 1}

	var states [chaincfg.DefinedDeployments]ThresholdState
	states[chaincfg.DeploymentCSV] = ThresholdStarted
	states[chaincfg.DeploymentSegwit] = ThresholdLockedIn

	version := CalcNextBlockVersion(params, states)
	if version&(1<<0) == 0 {
		t.Fatalf("expected bit 0 set for Started deployment")
	}
	if version&(1<<1) == 0 {
		t.Fatalf("expected bit 1 set for LockedIn deployment")
	}
	if uint32(version)&vbTopMask != vbTopBits {
		t.Fatalf("expected top bits marker set")
	}
}
