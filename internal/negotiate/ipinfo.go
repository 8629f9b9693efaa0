package negotiate

import "time"

const maxDNSEntries = 3
const maxWINSEntries = 3

// IpInfo is the tunnel configuration handed back by a successful
// getconfig exchange.
type IpInfo struct {
	Address    string
	Netmask    string
	MTU        int
	TunnelURL  string
	GWAddress  string
	DNS        []string
	WINS       []string
	DNSSuffix  string
	SplitRoutes []string

	Rekey       time.Duration
	RekeyMethod RekeyMethod
	LastRekey   time.Time

	DPD time.Duration
}

// RekeyMethod mirrors spec.md §3's TimerState.rekey_method.
type RekeyMethod int

const (
	RekeyMethodNone RekeyMethod = iota
	RekeyMethodTunnel
)

// defaultDPD is the DPD interval every negotiated IpInfo starts with.
// The getconfig response is not parsed for a DPD interval of its own, so
// this value is always the one in effect, whether or not <timeout> set a
// rekey interval.
const defaultDPD = 10 * time.Second
