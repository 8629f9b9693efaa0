// Package negotiate implements the getconfig exchange: building the
// form-encoded request, dispatching the response through the
// classifier, and populating IpInfo from the resulting XML.
package negotiate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gpstvpn/gpst-client/internal/cookie"
	"github.com/gpstvpn/gpst-client/internal/httpclient"
	"github.com/gpstvpn/gpst-client/internal/mtu"
	"github.com/gpstvpn/gpst-client/internal/response"
)

// ErrReconnectChangedAddress is returned when a reconnect negotiation
// yields an address or netmask different from the one already in use
// (spec.md §4.5 post-condition).
var ErrReconnectChangedAddress = errors.New("negotiate: reconnect changed address or netmask")

// ErrMissingAddress is returned when the getconfig response has no
// <ip-address> element at all; spec.md §4.5 treats this as always
// fatal, reconnect or not.
var ErrMissingAddress = errors.New("negotiate: getconfig response missing ip-address")

const getconfigPath = "/ssl-vpn/getconfig.esp"
const formContentType = "application/x-www-form-urlencoded"
const defaultTunnelURLPath = "/ssl-tunnel-connect.sslvpn"

// Clock abstracts time.Now so rekey timestamps are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Request holds the inputs to a single getconfig negotiation.
type Request struct {
	OSVersion     string
	ClientOS      string
	SessionCookie string
	PreferredIP   string

	// ReqMTU/BaseMTU/Conn/IPv6 feed the MTU estimator when the server
	// reports mtu=0.
	ReqMTU  int
	BaseMTU int
	Conn    mtu.Conn
	IPv6    bool

	// Previous is the prior IpInfo on a reconnect; nil on first
	// connect. When non-nil, the new address/netmask must match.
	Previous *IpInfo

	// ExternalGateway is the gateway host the client actually dialed,
	// used only to log a mismatch against <gw-address>.
	ExternalGateway string
}

// GatewayMismatchLogger is called when the negotiated <gw-address>
// doesn't match the gateway the client dialed; informational only per
// spec.md §4.5.
type GatewayMismatchLogger func(negotiated, external string)

// Negotiate performs a full getconfig exchange: build the request body,
// POST it, classify and parse the response, validate reconnect
// invariants, and return the resulting IpInfo alongside the raw
// config-option list the getconfig response carried (spec.md §3
// ConfigOption / §6 negotiator outputs).
func Negotiate(ctx context.Context, client httpclient.Client, req Request, onGWMismatch GatewayMismatchLogger) (*IpInfo, cookie.OptionList, error) {
	return negotiate(ctx, client, req, onGWMismatch, realClock{})
}

func negotiate(ctx context.Context, client httpclient.Client, req Request, onGWMismatch GatewayMismatchLogger, clock Clock) (*IpInfo, cookie.OptionList, error) {
	body := buildRequestBody(req.OSVersion, req.ClientOS, req.SessionCookie, req.PreferredIP)

	status, respBody, err := client.Do(ctx, http.MethodPost, getconfigPath, formContentType, []byte(body))
	if err != nil {
		return nil, nil, fmt.Errorf("negotiate: getconfig request: %w", err)
	}

	info := &IpInfo{TunnelURL: defaultTunnelURLPath, DPD: defaultDPD}
	var options cookie.OptionList

	_, classifyErr := response.Classify(status, respBody, func(root *response.Element) (any, error) {
		options = buildOptionList(root)
		return nil, populateIpInfo(info, root, req, onGWMismatch, clock)
	})
	if classifyErr != nil {
		return nil, nil, fmt.Errorf("negotiate: getconfig response: %w", classifyErr)
	}

	if info.Address == "" {
		return nil, nil, ErrMissingAddress
	}

	if req.Previous != nil {
		if info.Address != req.Previous.Address || info.Netmask != req.Previous.Netmask {
			return nil, nil, ErrReconnectChangedAddress
		}
	}

	if info.MTU == 0 {
		info.MTU = mtu.Estimate(req.ReqMTU, req.BaseMTU, req.Conn, req.IPv6)
	}

	return info, options, nil
}

// buildOptionList captures every immediate child of the getconfig
// response root as a (name, value) ConfigOption, independent of the
// fixed fields populateIpInfo extracts into IpInfo. This is the
// "config-option list" spec.md §3/§6 describes as a negotiator output
// in its own right, replaced wholesale on every negotiation (§3
// Lifecycle) and owned, alongside IpInfo, by the main loop that
// installs it (internal/tunnel.Loop.reset).
func buildOptionList(root *response.Element) cookie.OptionList {
	options := make(cookie.OptionList, 0, len(root.Children))
	for _, child := range root.Children {
		options = append(options, cookie.Option{Name: child.Name, Value: child.Text})
	}
	return options
}

func populateIpInfo(info *IpInfo, root *response.Element, req Request, onGWMismatch GatewayMismatchLogger, clock Clock) error {
	if addr, ok := root.ChildText("ip-address"); ok {
		info.Address = addr
	}
	if netmask, ok := root.ChildText("netmask"); ok {
		info.Netmask = netmask
	}
	if mtuStr, ok := root.ChildText("mtu"); ok {
		if v, err := strconv.Atoi(mtuStr); err == nil {
			info.MTU = v
		}
	}
	if tunnelURL, ok := root.ChildText("ssl-tunnel-url"); ok && tunnelURL != "" {
		info.TunnelURL = tunnelURL
	}
	if timeoutStr, ok := root.ChildText("timeout"); ok {
		if v, err := strconv.Atoi(timeoutStr); err == nil {
			info.Rekey = time.Duration(v-60) * time.Second
			info.RekeyMethod = RekeyMethodTunnel
			info.LastRekey = clock.Now()
		}
	}
	if gw, ok := root.ChildText("gw-address"); ok {
		info.GWAddress = gw
		if onGWMismatch != nil && req.ExternalGateway != "" && gw != req.ExternalGateway {
			onGWMismatch(gw, req.ExternalGateway)
		}
	}

	if dnsEl := root.Child("dns"); dnsEl != nil {
		info.DNS = collectMembers(dnsEl, maxDNSEntries)
	}
	if winsEl := root.Child("wins"); winsEl != nil {
		info.WINS = collectMembers(winsEl, maxWINSEntries)
	}
	if suffixEl := root.Child("dns-suffix"); suffixEl != nil {
		if len(suffixEl.Children) > 0 {
			info.DNSSuffix = suffixEl.Children[0].Text
		}
	}
	if routesEl := root.Child("access-routes"); routesEl != nil {
		for _, m := range routesEl.Children {
			if m.Name == "member" {
				info.SplitRoutes = append(info.SplitRoutes, m.Text)
			}
		}
	}
	// <ipsec> is ignored: no ESP path in this core.

	return nil
}

func collectMembers(el *response.Element, max int) []string {
	var out []string
	for _, m := range el.Children {
		if m.Name != "member" {
			continue
		}
		out = append(out, m.Text)
		if len(out) >= max {
			break
		}
	}
	return out
}
