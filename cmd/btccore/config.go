// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "btccore.conf"
	defaultLogLevel       = "info"
	defaultNotifyAddr     = "127.0.0.1:8665"
	defaultNetwork        = "mainnet"
)

// config defines the command line and config file options for btccore. Field
// tags are consumed directly by go-flags.
type config struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store data"`
	LogLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}"`
	Network     string `long:"network" description:"Network to connect to {mainnet, testnet, signet, regtest}"`
	ConnectPeer string `short:"c" long:"connect" description:"Connect only to the specified peer at startup"`
	NotifyAddr  string `long:"notify" description:"Address to serve peer/block websocket notifications on, empty to disable"`
	Proxy       string `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser   string `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass   string `long:"proxypass" description:"Password for proxy server"`
}

// defaultConfig returns a config populated with btccore's defaults, prior to
// any config-file or command-line overrides.
func defaultConfig() config {
	return config{
		LogLevel:   defaultLogLevel,
		Network:    defaultNetwork,
		NotifyAddr: defaultNotifyAddr,
	}
}

// loadConfig parses the config file named by -C/--configfile (if present)
// and then the command line, with the command line taking precedence. It
// follows the two-pass pattern btcd-lineage tools use: a first pass over
// the command line just to learn -C and -b, then a pass over the config
// file, then a final pass over the command line again.
func loadConfig() (*config, []string, error) {
	preCfg := defaultConfig()
	preParser := flags.NewParser(&preCfg, flags.Default)
	_, err := preParser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	cfg := preCfg
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = defaultConfigFilename
	}

	if _, err := os.Stat(cfg.ConfigFile); err == nil {
		fileParser := flags.NewParser(&cfg, flags.Default)
		if err := flags.NewIniParser(fileParser).ParseFile(cfg.ConfigFile); err != nil {
			return nil, nil, fmt.Errorf("parsing config file %s: %w", cfg.ConfigFile, err)
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remaining, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		cfg.DataDir = filepath.Join(home, ".btccore", cfg.Network)
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &cfg, remaining, nil
}
