package models

import "time"

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from latitude/longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lat returns the latitude, or 0 when the point is malformed.
func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Lng returns the longitude, or 0 when the point is malformed.
func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Provider is a directory record for a service provider eligible for
// dispatch. Profile management beyond what dispatch needs lives upstream.
type Provider struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Category        string    `bson:"category" json:"category"` // Service category the provider fulfils.
	Rating          float64   `bson:"rating" json:"rating"`     // Expected value between 1 and 5.
	Available       bool      `bson:"available" json:"available"`
	ActiveRequestID string    `bson:"activeRequestId,omitempty" json:"activeRequestId,omitempty"` // Busy lock: set on assignment, cleared on completion/cancellation.
	CompletedJobs   int       `bson:"completedJobs" json:"completedJobs"`
	LocationGeo     GeoPoint  `bson:"locationGeo" json:"locationGeo"`
	FCMToken        string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
