package models

import "time"

// TrackingInfo holds the latest provider location reported while a request
// is active, plus the recomputed distance/ETA to the service origin.
type TrackingInfo struct {
	LastLat        float64   `bson:"lastLat" json:"lastLat"`
	LastLng        float64   `bson:"lastLng" json:"lastLng"`
	DistanceKm     float64   `bson:"distanceKm" json:"distanceKm"`
	EtaMinutes     float64   `bson:"etaMinutes" json:"etaMinutes"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
	NearbyNotified bool      `bson:"nearbyNotified" json:"nearbyNotified"` // Suppresses repeat "provider nearby" pushes.
}
