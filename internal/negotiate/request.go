package negotiate

import (
	"net/url"
	"strings"

	"github.com/gpstvpn/gpst-client/internal/cookie"
)

// preferredIPField is the session-cookie field name suppressed on
// reconnect and re-expressed as its own top-level form field.
const preferredIPField = "preferred-ip"

// authFields is the subset of the session cookie replayed on the
// tunnel GET (spec.md §3 SessionCookie).
var authFields = []string{"user", "authcookie"}

// mapClientOS applies spec.md §4.5's one clientOS rewrite.
func mapClientOS(clientOS string) string {
	if clientOS == "win" {
		return "Windows"
	}
	return clientOS
}

// buildRequestBody assembles the getconfig form body exactly in the
// order spec.md §4.5 requires: the literal client-type/protocol-version/
// app-version prefix, then os-version, clientos, hmac-algo, enc-algo,
// then either preferred-ip plus the cookie with preferred-ip stripped,
// or the cookie unchanged.
func buildRequestBody(osVersion, clientOS, sessionCookie, preferredIP string) string {
	var buf strings.Builder
	buf.WriteString("client-type=1&protocol-version=p1&app-version=3.0.1-10")

	buf.WriteByte('&')
	buf.WriteString("os-version=")
	buf.WriteString(url.QueryEscape(osVersion))

	buf.WriteByte('&')
	buf.WriteString("clientos=")
	buf.WriteString(url.QueryEscape(mapClientOS(clientOS)))

	buf.WriteString("&hmac-algo=sha1,md5")
	buf.WriteString("&enc-algo=aes-128-cbc,aes-256-cbc")

	if preferredIP != "" {
		buf.WriteByte('&')
		buf.WriteString(preferredIPField)
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(preferredIP))
		cookie.AppendFiltered(&buf, sessionCookie, []string{preferredIPField}, false)
	} else {
		cookie.AppendFiltered(&buf, sessionCookie, nil, false)
	}

	return buf.String()
}

// FilterTunnelCookie reduces a session cookie to the {user, authcookie}
// subset replayed on the tunnel GET request line (spec.md §4.6).
func FilterTunnelCookie(sessionCookie string) string {
	return cookie.Filter(sessionCookie, authFields, true)
}
