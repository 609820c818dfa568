// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/btcweave/corevm/blockchain"
	"github.com/btcweave/corevm/notify"
	"github.com/btcweave/corevm/peer"
	"github.com/btcweave/corevm/txscript"
)

const logFilename = "btccore.log"

var (
	logRotator *rotator.Rotator
	backendLog = btclog.NewBackend(logWriter{})

	corelog = backendLog.Logger("CORE")
	peerlog = backendLog.Logger("PEER")
	txsclog = backendLog.Logger("SCRP")
	ntfylog = backendLog.Logger("NTFY")
)

// subsystemLoggers maps each subsystem's short logging tag to the package
// UseLogger hook that wires it up, mirroring btcd's subsystem log registry.
var subsystemLoggers = map[string]func(btclog.Logger){
	"CORE": func(l btclog.Logger) { corelog = l },
	"PEER": func(l btclog.Logger) { peerlog = l; peer.UseLogger(l) },
	"SCRP": func(l btclog.Logger) { txsclog = l; txscript.UseLogger(l) },
	"NTFY": func(l btclog.Logger) { ntfylog = l; notify.UseLogger(l) },
	"CHAN": blockchain.UseLogger,
}

// initLogRotator opens a rotating file writer and attaches the package's
// btclog backend to it plus stdout.
func initLogRotator(logDir string) error {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}
	logFile := filepath.Join(logDir, logFilename)

	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// init wires every subsystem's UseLogger hook to the backend-provided
// logger for its tag, so each package logs under its own subsystem name.
func init() {
	for tag, use := range subsystemLoggers {
		use(backendLog.Logger(tag))
	}
}

// logWriter multiplexes log output to both the rotator and stdout.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// setLogLevels applies the same level string to every registered subsystem.
func setLogLevels(levelStr string) {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		level = btclog.LevelInfo
	}
	for tag, use := range subsystemLoggers {
		logger := backendLog.Logger(tag)
		logger.SetLevel(level)
		use(logger)
	}
}
