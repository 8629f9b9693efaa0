package mtu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateRequestedMTUWins(t *testing.T) {
	assert.Equal(t, 1400, Estimate(1400, 1406, nil, false))
}

func TestEstimateDefaultsBaseMTU(t *testing.T) {
	got := Estimate(0, 0, nil, false)
	assert.Equal(t, defaultBaseMTU-espOverhead-udpHeader-ipv4Header, got)
}

func TestEstimateClampsBaseMTUFloor(t *testing.T) {
	got := Estimate(0, 1000, nil, false)
	assert.Equal(t, minBaseMTU-espOverhead-udpHeader-ipv4Header, got)
}

func TestEstimateUsesConfiguredBaseMTU(t *testing.T) {
	got := Estimate(0, 1500, nil, false)
	assert.Equal(t, 1500-espOverhead-udpHeader-ipv4Header, got)
}

func TestEstimateIPv6UsesLargerHeader(t *testing.T) {
	got := Estimate(0, 1500, nil, true)
	assert.Equal(t, 1500-espOverhead-udpHeader-ipv6Header, got)
}

func TestEstimateNilConnFallsThroughToDefault(t *testing.T) {
	got := Estimate(0, 0, nil, false)
	assert.Greater(t, got, 0)
}
