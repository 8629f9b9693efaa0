// Package tunnel implements the tunnel handshake and the packet-framing
// main loop that multiplexes inbound/outbound traffic, DPD, keepalive,
// rekey, and reconnect.
package tunnel

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gpstvpn/gpst-client/internal/cookie"
	"github.com/gpstvpn/gpst-client/internal/frame"
	"github.com/gpstvpn/gpst-client/internal/negotiate"
	"github.com/gpstvpn/gpst-client/internal/timer"
)

// QuitError is returned by Pump when the loop hits a fatal condition;
// Reason mirrors the source's quit_reason string.
type QuitError struct {
	Reason string
}

func (e *QuitError) Error() string {
	return "tunnel: " + e.Reason
}

// ReconnectFunc drops the current socket and performs a full
// reconnect: a fresh TLS dial, config renegotiation (§4.5), and the
// tunnel handshake (§4.6). It returns the new connection, the IpInfo,
// and the config-option list the renegotiation produced.
type ReconnectFunc func(ctx context.Context) (net.Conn, *negotiate.IpInfo, cookie.OptionList, error)

// Loop is the single-threaded, cooperatively scheduled main loop
// state machine described in spec.md §4.7.
type Loop struct {
	conn       net.Conn
	reconnect  ReconnectFunc
	logger     *slog.Logger
	now        func() time.Time
	readBuf    []byte

	outbound <-chan *Packet
	inbound  chan<- *Packet
	pending  *Packet
	// pendingOffset is how many bytes of pending.Bytes() a prior short
	// write already sent; the next write resumes at this offset with
	// the identical buffer (spec.md §5, §4.7: "partial write pending:
	// retry with the SAME buffer and length; no substitution").
	pendingOffset int

	mtu int

	// options is the config-option list from the negotiation that
	// installed the current connection; per spec.md §4.7's shared
	// resources list, it is owned exclusively by the main loop and
	// replaced wholesale on every successful (re)connect.
	options cookie.OptionList

	lastRx, lastTx, lastRekey time.Time
	dpd, keepalive, rekey     time.Duration
}

// NewLoop constructs a Loop bound to an already-opened tunnel
// connection, the IpInfo, and the config-option list the negotiation
// that produced it returned.
func NewLoop(conn net.Conn, info *negotiate.IpInfo, options cookie.OptionList, outbound <-chan *Packet, inbound chan<- *Packet, reconnect ReconnectFunc, logger *slog.Logger) *Loop {
	l := &Loop{
		reconnect: reconnect,
		logger:    logger,
		now:       time.Now,
		outbound:  outbound,
		inbound:   inbound,
	}
	l.reset(conn, info, options)
	return l
}

// reset installs a freshly opened connection, its negotiated IpInfo,
// and its config-option list, per spec.md §4.6 step 4: "initialise
// last_rekey = last_rx = last_tx = now". Keepalive is set equal to DPD
// unconditionally (spec.md §9 open question), preserved rather than
// guessed away. The previous options snapshot is simply overwritten
// here, which only happens once this (re)connect has fully succeeded
// (spec.md §3 Lifecycle: "the previous list is released only after the
// new negotiation succeeds").
func (l *Loop) reset(conn net.Conn, info *negotiate.IpInfo, options cookie.OptionList) {
	now := l.now()
	l.conn = conn
	l.pending = nil
	l.pendingOffset = 0
	l.mtu = info.MTU
	l.readBuf = make([]byte, frame.HeaderLen+info.MTU+packetHeadroom)
	l.dpd = info.DPD
	l.keepalive = info.DPD
	l.rekey = info.Rekey
	l.options = options
	l.lastRekey = now
	l.lastRx = now
	l.lastTx = now
}

// Options returns the config-option list from the negotiation that
// produced the currently installed connection.
func (l *Loop) Options() cookie.OptionList {
	return l.options
}

func (l *Loop) timerState() timer.State {
	return timer.State{
		LastRx:    l.lastRx,
		LastTx:    l.lastTx,
		LastRekey: l.lastRekey,
		DPD:       l.dpd,
		Keepalive: l.keepalive,
		Rekey:     l.rekey,
	}
}

// Pump runs one iteration of the main loop: drain inbound frames,
// then drive at most one outbound packet. timeout is the caller's
// in/out poll timeout; Pump may shorten it to the next scheduled
// timer event. Returns >0 if progress was made, 0 if idle, and a
// non-nil *QuitError on fatal error.
func (l *Loop) Pump(ctx context.Context, timeout *time.Duration) (int, *QuitError) {
	if l.conn == nil {
		return l.doReconnect(ctx)
	}

	progress := 0

	for {
		made, quit := l.readOneFrame()
		if quit != nil {
			return 0, quit
		}
		if l.conn == nil {
			// the connection dropped mid-drain; let the next Pump
			// invocation observe socket==none and reconnect.
			return progress, nil
		}
		if !made {
			break
		}
		progress = 1
	}

	now := l.now()
	outProgress, quit, next := l.driveOutbound(ctx, now)
	if quit != nil {
		return 0, quit
	}
	if outProgress > 0 {
		progress = 1
	}
	if next != nil {
		if timeout == nil || *next < *timeout {
			*timeout = *next
		}
	}

	return progress, nil
}

// readOneFrame performs a single non-blocking read and dispatches the
// resulting frame, if any. made reports whether a frame was consumed
// (so the caller keeps draining); it is false both when there was no
// data pending and when the connection was dropped.
func (l *Loop) readOneFrame() (made bool, quit *QuitError) {
	if err := l.conn.SetReadDeadline(time.Now()); err != nil {
		l.conn = nil
		return false, nil
	}

	n, err := l.conn.Read(l.readBuf)
	if err != nil {
		if isTimeout(err) {
			return false, nil
		}
		if errors.Is(err, net.ErrClosed) {
			l.conn = nil
			return false, nil
		}
		// any other read error: treat the socket as gone, same as a
		// clean close, and let the caller reconnect on its next entry.
		l.conn = nil
		return false, nil
	}
	if n == 0 {
		l.conn = nil
		return false, nil
	}

	h, anomaly, err := frame.Decode(l.readBuf[:n], n)
	if anomaly != nil && l.logger != nil {
		l.logger.Debug("frame anomaly", "error", anomaly.Error())
	}

	switch {
	case errors.Is(err, frame.ErrShortFrame):
		return false, &QuitError{Reason: "Short packet"}
	case errors.Is(err, frame.ErrLengthMismatch):
		if l.logger != nil {
			l.logger.Info("frame length mismatch", "header", hex.EncodeToString(l.readBuf[:frame.HeaderLen]))
		}
		return true, nil
	case errors.Is(err, frame.ErrMalformedFrame):
		return false, &QuitError{Reason: "Unknown packet"}
	case err != nil:
		return false, &QuitError{Reason: "Unknown packet"}
	}

	now := l.now()
	switch h.EtherType {
	case frame.EtherTypeDPD:
		l.lastRx = now
		return true, nil
	case frame.EtherTypeIPv4:
		l.lastRx = now
		pkt := NewPacket(l.mtu)
		copied := copy(pkt.PayloadCap(), l.readBuf[frame.HeaderLen:n])
		pkt.SetPayloadLen(copied)
		if l.inbound != nil {
			l.inbound <- pkt
		}
		return true, nil
	default:
		return true, nil
	}
}

// driveOutbound advances at most one outbound packet per invocation,
// per spec.md §4.7's ordering guarantee.
func (l *Loop) driveOutbound(ctx context.Context, now time.Time) (progress int, quit *QuitError, next *time.Duration) {
	if l.pending == nil {
		action, n := timer.Act(l.timerState(), now)
		next = n

		switch action {
		case timer.ActionRekey, timer.ActionDPDDead:
			p, q := l.doReconnect(ctx)
			return p, q, nil
		case timer.ActionKeepalive:
			if len(l.outbound) == 0 {
				l.pending = DPDSentinel()
				l.pendingOffset = 0
			}
			// else: outbound queue non-empty, data will refresh last_tx;
			// fall through to the pop below.
		case timer.ActionDPD:
			l.pending = DPDSentinel()
			l.pendingOffset = 0
		}

		if l.pending == nil {
			select {
			case pkt, ok := <-l.outbound:
				if ok {
					pkt.StampHeader()
					l.pending = pkt
					l.pendingOffset = 0
				}
			default:
			}
		}

		if l.pending == nil {
			return 0, nil, next
		}
	}

	buf := l.pending.Bytes()[l.pendingOffset:]
	n, err := l.conn.Write(buf)
	if err != nil {
		l.conn = nil
		return 0, nil, nil
	}

	switch {
	case n == len(buf):
		l.lastTx = now
		l.pending = nil
		l.pendingOffset = 0
		return 1, nil, nil
	case n == 0:
		action, _ := timer.Act(l.timerState(), now)
		switch action {
		case timer.ActionRekey, timer.ActionDPDDead:
			p, q := l.doReconnect(ctx)
			return p, q, nil
		}
		return 0, nil, nil
	default:
		// Partial write: resume at the new offset next invocation with
		// the identical underlying buffer, never regenerating content
		// (spec.md §5, S6).
		l.pendingOffset += n
		return 0, nil, nil
	}
}

// doReconnect implements spec.md §4.8.
func (l *Loop) doReconnect(ctx context.Context) (int, *QuitError) {
	conn, info, options, err := l.reconnect(ctx)
	if err != nil {
		if l.logger != nil {
			l.logger.Error("reconnect failed", "error", err)
		}
		return 0, &QuitError{Reason: "GPST reconnect failed"}
	}
	l.reset(conn, info, options)
	return 1, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
