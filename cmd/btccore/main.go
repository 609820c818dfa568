// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command btccore is a thin driver that wires together the core, script
// verification, consensus parameter, and peer packages: it dials a single
// configured peer, runs the version/verack handshake, and serves peer
// status over a websocket notification hub.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcweave/corevm/chaincfg"
	"github.com/btcweave/corevm/notify"
	"github.com/btcweave/corevm/peer"
)

func networkParams(name string) (*chaincfg.Params, error) {
	switch name {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}

func realMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogRotator(cfg.DataDir); err != nil {
		return err
	}
	setLogLevels(cfg.LogLevel)

	params, err := networkParams(cfg.Network)
	if err != nil {
		return err
	}
	corelog.Infof("btccore starting on %s (magic %08x)", params.Name, uint32(params.Net))

	hub := notify.NewHub()
	defer hub.Shutdown()

	if cfg.NotifyAddr != "" {
		go func() {
			corelog.Infof("serving notifications on %s", cfg.NotifyAddr)
			if err := http.ListenAndServe(cfg.NotifyAddr, hub); err != nil {
				corelog.Errorf("notification server stopped: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		corelog.Info("received interrupt, shutting down")
		cancel()
	}()

	if cfg.ConnectPeer == "" {
		corelog.Info("no --connect peer configured, idling until interrupted")
		<-ctx.Done()
		return nil
	}

	return connectPeer(ctx, cfg, params, hub)
}

func connectPeer(ctx context.Context, cfg *config, params *chaincfg.Params, hub *notify.Hub) error {
	var dialer peer.Dialer
	if cfg.Proxy != "" {
		dialer = peer.NewSOCKSDialer(cfg.Proxy, cfg.ProxyUser, cfg.ProxyPass)
	} else {
		dialer = peer.NewDirectDialer()
	}

	conn, err := dialer.Dial("tcp", cfg.ConnectPeer)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.ConnectPeer, err)
	}
	defer conn.Close()

	transport := peer.NegotiateTransport(conn, params.Net, true)

	p := peer.NewPeer(cfg.ConnectPeer, transport, peer.NewNonceCache(), peer.Config{
		UserAgent: "/btccore:0.1.0/",
	})
	go notify.ForwardPeerEvents(hub, cfg.ConnectPeer, p.Status().Subscribe())

	return p.Run(ctx)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
