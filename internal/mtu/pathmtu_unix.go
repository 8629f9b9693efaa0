//go:build unix && !linux

package mtu

import "golang.org/x/sys/unix"

// pathMTU has no TCP_INFO equivalent outside Linux; it goes straight
// to the TCP_MAXSEG fallback tier (spec.md §4.4 step 1's third tier).
func pathMTU(conn Conn) (int, bool) {
	if conn == nil {
		return 0, false
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, false
	}

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
