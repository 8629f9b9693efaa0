package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestActNoneWhenNothingDue(t *testing.T) {
	s := State{
		LastRx:    base,
		LastTx:    base,
		LastRekey: base,
		DPD:       30 * time.Second,
		Keepalive: 30 * time.Second,
		Rekey:     time.Hour,
	}
	action, next := Act(s, base.Add(time.Second))
	assert.Equal(t, ActionNone, action)
	require.NotNil(t, next)
	assert.Greater(t, *next, time.Duration(0))
}

func TestActRekeyTakesPriority(t *testing.T) {
	s := State{
		LastRx:    base,
		LastTx:    base,
		LastRekey: base,
		DPD:       30 * time.Second,
		Keepalive: 30 * time.Second,
		Rekey:     time.Hour,
	}
	action, next := Act(s, base.Add(time.Hour+time.Minute))
	assert.Equal(t, ActionRekey, action)
	require.NotNil(t, next)
	assert.Equal(t, time.Duration(0), *next)
}

func TestActDPDDeadAfterThreeMissedIntervals(t *testing.T) {
	s := State{
		LastRx: base,
		LastTx: base,
		DPD:    10 * time.Second,
	}
	action, _ := Act(s, base.Add(31*time.Second))
	assert.Equal(t, ActionDPDDead, action)
}

func TestActDPDDueOnFirstMissedInterval(t *testing.T) {
	s := State{
		LastRx: base,
		LastTx: base,
		DPD:    10 * time.Second,
	}
	action, _ := Act(s, base.Add(11*time.Second))
	assert.Equal(t, ActionDPD, action)
}

func TestActKeepaliveDueWhenNoRecentTx(t *testing.T) {
	s := State{
		LastRx:    base,
		LastTx:    base,
		DPD:       time.Minute,
		Keepalive: 5 * time.Second,
	}
	action, _ := Act(s, base.Add(6*time.Second))
	assert.Equal(t, ActionKeepalive, action)
}

func TestActZeroIntervalsAreDisabled(t *testing.T) {
	s := State{LastRx: base, LastTx: base, LastRekey: base}
	action, next := Act(s, base.Add(24*time.Hour))
	assert.Equal(t, ActionNone, action)
	assert.Nil(t, next)
}
