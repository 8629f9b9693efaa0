//go:build linux

package mtu

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// pathMTU queries TCP_INFO on conn's underlying file descriptor and
// derives a base MTU from it, per spec.md §4.4 step 1: prefer pmtu,
// then min(rcv_mss, snd_mss) minus the TLS record overhead, falling
// back to the TCP_MAXSEG socket option minus the same overhead when
// TCP_INFO yields nothing usable.
func pathMTU(conn Conn) (int, bool) {
	if conn == nil {
		return 0, false
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, false
	}

	var info *unix.TCPInfo
	var getErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		info, getErr = unix.GetsockoptTCPInfo(int(fd), unix.SOL_TCP, unix.TCP_INFO)
	})
	if ctrlErr == nil && getErr == nil && info != nil {
		if info.Pmtu != 0 {
			return int(info.Pmtu), true
		}

		mss := info.Rcv_mss
		if info.Snd_mss != 0 && (mss == 0 || info.Snd_mss < mss) {
			mss = info.Snd_mss
		}
		if mss > tlsRecordOverhead {
			return int(mss) - tlsRecordOverhead, true
		}
	}

	return tcpMaxSegMTU(raw)
}

// tcpMaxSegMTU is the third fallback tier: the TCP_MAXSEG socket
// option minus the TLS record overhead, independent of TCP_INFO.
func tcpMaxSegMTU(raw syscall.RawConn) (int, bool) {
	var maxSeg int
	var getErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		maxSeg, getErr = unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_MAXSEG)
	})
	if ctrlErr != nil || getErr != nil || maxSeg <= tlsRecordOverhead {
		return 0, false
	}
	return maxSeg - tlsRecordOverhead, true
}
