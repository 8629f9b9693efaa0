// Package timer implements the pure timer-oracle function consulted by
// the tunnel main loop: given the current state and a clock reading, it
// decides whether a keepalive/DPD/rekey/reconnect action is due, and
// how long the caller may sleep before it must be asked again.
package timer

import "time"

// Action is one of the actions the main loop branches on.
type Action int

const (
	ActionNone Action = iota
	ActionKeepalive
	ActionDPD
	ActionDPDDead
	ActionRekey
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionKeepalive:
		return "keepalive"
	case ActionDPD:
		return "dpd"
	case ActionDPDDead:
		return "dpd_dead"
	case ActionRekey:
		return "rekey"
	default:
		return "unknown"
	}
}

// State carries the timestamps and intervals the oracle reasons about.
// Zero-value Keepalive/DPD/Rekey durations mean "disabled".
type State struct {
	LastRx    time.Time
	LastTx    time.Time
	LastRekey time.Time

	DPD       time.Duration
	Keepalive time.Duration
	Rekey     time.Duration
}

// dpdDeadMultiple is how many missed DPD intervals without any inbound
// traffic declare the peer dead, mirroring the source's tolerance of a
// few missed echoes before giving up rather than reconnecting on the
// very first miss.
const dpdDeadMultiple = 3

// Act implements the oracle: the source sets keepalive = dpd
// unconditionally after negotiation, so in practice the Keepalive and
// DPD fields carry the same interval; this is preserved rather than
// guessed away. ActionKeepalive and ActionDPD are still returned as
// distinct values — the main loop's KA_KEEPALIVE branch falls through
// to KA_DPD only when the outbound queue is empty, and the loop models
// that as an explicit shared branch rather than relying on fall-through
// here. Returns the action due (if any) and the caller's timeout
// clamped down to the next scheduled event.
func Act(s State, now time.Time) (Action, *time.Duration) {
	var next *time.Duration
	remaining := func(deadline time.Time) time.Duration {
		d := deadline.Sub(now)
		if d < 0 {
			d = 0
		}
		return d
	}
	clamp := func(d time.Duration) {
		if next == nil || d < *next {
			next = &d
		}
	}

	if s.Rekey > 0 && !s.LastRekey.IsZero() {
		deadline := s.LastRekey.Add(s.Rekey)
		if !now.Before(deadline) {
			return ActionRekey, durationPtr(0)
		}
		clamp(remaining(deadline))
	}

	if s.DPD > 0 && !s.LastRx.IsZero() {
		deadDeadline := s.LastRx.Add(s.DPD * dpdDeadMultiple)
		if !now.Before(deadDeadline) {
			return ActionDPDDead, durationPtr(0)
		}

		dpdDeadline := s.LastRx.Add(s.DPD)
		if !now.Before(dpdDeadline) {
			return ActionDPD, durationPtr(0)
		}
		clamp(remaining(dpdDeadline))
	}

	if s.Keepalive > 0 && !s.LastTx.IsZero() {
		deadline := s.LastTx.Add(s.Keepalive)
		if !now.Before(deadline) {
			return ActionKeepalive, durationPtr(0)
		}
		clamp(remaining(deadline))
	}

	return ActionNone, next
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
