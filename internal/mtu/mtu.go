// Package mtu estimates the tunnel MTU from a requested value, a
// configured base MTU, and TCP diagnostics read off the underlying
// connection.
package mtu

import (
	"syscall"
)

// Overhead constants for a hypothetical ESP/UDP encapsulation, per
// spec.md §4.4. The core here only ever runs over TLS, but the MTU is
// still sized to leave room for a future ESP path.
const (
	espOverhead = 78 // SPI(4) + seq(4) + MAC(<=20) + IV(<=32) + pad-len(1) + next-hdr(1) + max-pad(16)
	udpHeader   = 8
	ipv4Header  = 20
	ipv6Header  = 40

	tlsRecordOverhead = 13

	defaultBaseMTU = 1406
	minBaseMTU     = 1280
)

// Conn is the subset of net.Conn a raw TCP socket descriptor can be
// extracted from, so pathMTU can call getsockopt(TCP_INFO) on it.
type Conn interface {
	syscall.Conn
}

// Estimate implements spec.md §4.4. reqMTU and baseMTU are the
// operator-requested MTU and base MTU (0 meaning "unset"); conn is the
// TLS socket used for TCP diagnostics when baseMTU is unset; ipv6
// selects the IP header size used in the ESP-path overhead budget.
func Estimate(reqMTU, baseMTU int, conn Conn, ipv6 bool) int {
	if baseMTU == 0 {
		if discovered, ok := pathMTU(conn); ok {
			baseMTU = discovered
		}
	}

	if baseMTU == 0 {
		baseMTU = defaultBaseMTU
	}

	if baseMTU < minBaseMTU {
		baseMTU = minBaseMTU
	}

	if reqMTU != 0 {
		return reqMTU
	}

	ipHeader := ipv4Header
	if ipv6 {
		ipHeader = ipv6Header
	}

	return baseMTU - espOverhead - udpHeader - ipHeader
}
