package booking

import (
	"math"
	"time"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// AdjustmentPolicy scales a raw travel-time estimate, e.g. for traffic or
// preparation overhead. Implementations must be deterministic for a fixed
// input so estimates are reproducible.
type AdjustmentPolicy interface {
	Factor(at time.Time) float64
}

// UnitAdjustment applies no scaling. The default policy.
type UnitAdjustment struct{}

func (UnitAdjustment) Factor(time.Time) float64 { return 1.0 }

// PeakHourAdjustment inflates estimates during morning and evening rush.
type PeakHourAdjustment struct {
	PeakFactor float64
}

func (p PeakHourAdjustment) Factor(at time.Time) float64 {
	h := at.Hour()
	if (h >= 7 && h < 10) || (h >= 16 && h < 19) {
		return p.PeakFactor
	}
	return 1.0
}

// Estimator computes distance and travel time between two coordinates.
type Estimator struct {
	SpeedKmph float64
	Policy    AdjustmentPolicy
}

// NewEstimator builds an estimator with the given average speed. A nil
// policy defaults to UnitAdjustment.
func NewEstimator(speedKmph float64, policy AdjustmentPolicy) *Estimator {
	if policy == nil {
		policy = UnitAdjustment{}
	}
	return &Estimator{SpeedKmph: speedKmph, Policy: policy}
}

// Estimate returns the great-circle distance in km and the adjusted travel
// time in minutes from (fromLat, fromLng) to (toLat, toLng).
func (e *Estimator) Estimate(fromLat, fromLng, toLat, toLng float64, at time.Time) (distanceKm, etaMinutes float64) {
	distanceKm = HaversineKm(fromLat, fromLng, toLat, toLng)
	etaMinutes = distanceKm / e.SpeedKmph * 60 * e.Policy.Factor(at)
	return distanceKm, etaMinutes
}
