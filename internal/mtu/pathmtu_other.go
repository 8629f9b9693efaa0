//go:build !unix

package mtu

// pathMTU has no getsockopt-based diagnostics available off a Unix
// socket; callers fall through to the defaultBaseMTU.
func pathMTU(conn Conn) (int, bool) {
	return 0, false
}
