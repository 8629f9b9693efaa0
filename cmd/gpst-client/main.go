// Command gpst-client runs the GlobalProtect SSL VPN tunnel core: it
// negotiates a tunnel configuration against an already-authenticated
// session, opens the tunnel, and shuttles frames until told to stop.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/gpstvpn/gpst-client/internal/config"
	"github.com/gpstvpn/gpst-client/internal/cookie"
	"github.com/gpstvpn/gpst-client/internal/httpclient"
	"github.com/gpstvpn/gpst-client/internal/logging"
	"github.com/gpstvpn/gpst-client/internal/negotiate"
	"github.com/gpstvpn/gpst-client/internal/tunnel"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		gateway    = flag.String("gateway", "", "override the configured gateway")
		cookieFile = flag.String("cookie-file", "", "path to a file containing the session cookie")
		run        = flag.Bool("run", false, "run the tunnel core in the foreground")
	)
	flag.Parse()

	logger := logging.New("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.LogLevel)

	if *gateway != "" {
		cfg.Gateway = *gateway
	}
	if *cookieFile != "" {
		data, rerr := os.ReadFile(*cookieFile)
		if rerr != nil {
			logger.Error("failed to read cookie file", "error", rerr)
			os.Exit(1)
		}
		cfg.SessionCookie = strings.TrimSpace(string(data))
	}

	if !*run {
		logger.Info("pass -run to start the tunnel core in the foreground")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runClient(ctx, cfg, logger); err != nil {
		logger.Error("gpst-client exited with error", "error", err)
		os.Exit(1)
	}
}

// runClient performs the initial connect, then drives the main loop
// until ctx is cancelled or the loop quits fatally.
func runClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	correlationID := uuid.New().String()
	logger = logger.With("correlation_id", correlationID)

	sess := &session{
		cfg:    cfg,
		logger: logger,
		client: httpclient.New(cfg.Gateway, cfg.HTTPTimeout),
		dialer: tlsDialer{gateway: cfg.Gateway},
	}

	conn, info, options, err := sess.connect(ctx)
	if err != nil {
		return fmt.Errorf("initial connect: %w", err)
	}
	logger.Info("tunnel established", "address", info.Address, "mtu", info.MTU)

	outbound := make(chan *tunnel.Packet, 64)
	inbound := make(chan *tunnel.Packet, 64)

	loop := tunnel.NewLoop(conn, info, options, outbound, inbound, sess.connect, logger)

	const idlePoll = time.Second
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		timeout := idlePoll
		progress, quit := loop.Pump(ctx, &timeout)
		if quit != nil {
			return quit
		}
		if progress == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(timeout):
			}
		}
	}
}

// session holds the collaborators a (re)connect needs, and the most
// recently negotiated IpInfo so a reconnect can validate the address
// invariant from spec.md §4.5.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	client httpclient.Client
	dialer tunnel.Dialer
	info   *negotiate.IpInfo
}

// connect implements tunnel.ReconnectFunc: negotiate a config, then
// open the tunnel. It doubles as the initial connect and every
// subsequent reconnect (spec.md §4.8).
func (s *session) connect(ctx context.Context) (net.Conn, *negotiate.IpInfo, cookie.OptionList, error) {
	var preferredIP string
	if s.info != nil {
		preferredIP = s.info.Address
	}

	req := negotiate.Request{
		OSVersion:       s.cfg.OSVersion,
		ClientOS:        s.cfg.ClientOS,
		SessionCookie:   s.cfg.SessionCookie,
		PreferredIP:     preferredIP,
		ReqMTU:          s.cfg.ReqMTU,
		BaseMTU:         s.cfg.BaseMTU,
		IPv6:            s.cfg.IPv6,
		Previous:        s.info,
		ExternalGateway: s.cfg.Gateway,
	}

	info, options, err := negotiate.Negotiate(ctx, s.client, req, func(negotiated, external string) {
		s.logger.Debug("gateway address mismatch", "negotiated", negotiated, "external", external)
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("negotiate: %w", err)
	}

	filteredCookie := negotiate.FilterTunnelCookie(s.cfg.SessionCookie)
	conn, err := tunnel.Open(ctx, s.dialer, info.TunnelURL, filteredCookie, s.logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open tunnel: %w", err)
	}

	s.info = info
	return conn, info, options, nil
}

// tlsDialer implements tunnel.Dialer over a fresh TLS connection to
// the gateway, per spec.md §4.6 step 1.
type tlsDialer struct {
	gateway string
}

func (d tlsDialer) Dial(ctx context.Context) (net.Conn, error) {
	host := strings.TrimPrefix(strings.TrimPrefix(d.gateway, "https://"), "http://")
	if !strings.Contains(host, ":") {
		host += ":443"
	}
	hostname := host
	if i := strings.IndexByte(host, ':'); i >= 0 {
		hostname = host[:i]
	}

	var netDialer net.Dialer
	rawConn, err := netDialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", host, err)
	}

	tlsConn := tls.Client(rawConn, &tls.Config{ServerName: hostname, MinVersion: tls.VersionTLS12})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("TLS handshake with %s: %w", host, err)
	}

	return tlsConn, nil
}
