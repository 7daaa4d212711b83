package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
	}{
		{name: "one degree of longitude at the equator", lat1: 0, lng1: 0, lat2: 0, lng2: 1, wantKm: 111.19},
		{name: "same point", lat1: -1.2921, lng1: 36.8219, lat2: -1.2921, lng2: 36.8219, wantKm: 0},
		{name: "nairobi cbd to westlands", lat1: -1.2864, lng1: 36.8172, lat2: -1.2635, lng2: 36.8021, wantKm: 3.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HaversineKm(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
			assert.InDelta(t, tc.wantKm, got, 0.05)
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	forward := HaversineKm(-1.2921, 36.8219, -1.3032, 36.7073)
	backward := HaversineKm(-1.3032, 36.7073, -1.2921, 36.8219)
	assert.InDelta(t, forward, backward, 1e-9)
}

func TestEstimateIsDeterministic(t *testing.T) {
	est := NewEstimator(40, nil)
	at := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)

	d1, e1 := est.Estimate(0, 0, 0, 1, at)
	d2, e2 := est.Estimate(0, 0, 0, 1, at)

	assert.Equal(t, d1, d2)
	assert.Equal(t, e1, e2)
	assert.InDelta(t, 111.19, d1, 0.05)
	// 111.19 km at 40 km/h.
	assert.InDelta(t, d1/40*60, e1, 1e-9)
}

func TestPeakHourAdjustment(t *testing.T) {
	policy := PeakHourAdjustment{PeakFactor: 1.5}

	morningRush := time.Date(2026, 3, 12, 8, 30, 0, 0, time.UTC)
	eveningRush := time.Date(2026, 3, 12, 17, 0, 0, 0, time.UTC)
	midday := time.Date(2026, 3, 12, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, 1.5, policy.Factor(morningRush))
	assert.Equal(t, 1.5, policy.Factor(eveningRush))
	assert.Equal(t, 1.0, policy.Factor(midday))

	est := NewEstimator(40, policy)
	_, peakEta := est.Estimate(0, 0, 0, 1, morningRush)
	_, offPeakEta := est.Estimate(0, 0, 0, 1, midday)
	assert.InDelta(t, offPeakEta*1.5, peakEta, 1e-9)
}
