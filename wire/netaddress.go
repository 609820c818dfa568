// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// NetAddress defines information about a peer on the network, including the
// time it was last seen, the services it supports, its IP address, and
// port. It is embedded in the version handshake message.
type NetAddress struct {
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// NewNetAddressIPPort returns a new NetAddress for the given IP/port with
// the current time and the given services.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Timestamp: time.Now(),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

// readNetAddress reads a NetAddress from r. hasTimestamp controls whether
// a 4-byte timestamp prefix is present: addr message entries carry one,
// the addresses embedded in the version message do not.
func readNetAddress(r io.Reader, na *NetAddress, hasTimestamp bool) error {
	var ip [16]byte

	if hasTimestamp {
		var ts uint32
		if err := readElement(r, &ts); err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(ts), 0)
	}

	var services uint64
	if err := readElement(r, &services); err != nil {
		return err
	}
	na.Services = ServiceFlag(services)

	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	na.IP = net.IP(append([]byte(nil), ip[:]...))

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return err
	}
	na.Port = uint16(port[0])<<8 | uint16(port[1])

	return nil
}

// writeNetAddress writes a NetAddress to w.
func writeNetAddress(w io.Writer, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := writeElement(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	if err := writeElement(w, uint64(na.Services)); err != nil {
		return err
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}

	port := [2]byte{byte(na.Port >> 8), byte(na.Port)}
	_, err := w.Write(port[:])
	return err
}
