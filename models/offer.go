package models

import "time"

// Offer responses. Pending is the only non-final value; transitions away
// from it are never reversed.
const (
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
	OfferTimeout  = "timeout"
)

// Offer records one notified candidate's stake on a request. Offers are
// append-only per request; at most one may ever hold OfferAccepted.
type Offer struct {
	ProviderID  string     `bson:"providerId" json:"providerId"`
	NotifiedAt  time.Time  `bson:"notifiedAt" json:"notifiedAt"`
	Response    string     `bson:"response" json:"response"`
	RespondedAt *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
	DistanceKm  float64    `bson:"distanceKm" json:"distanceKm"` // Provider-to-origin distance at notify time.
	EtaMinutes  float64    `bson:"etaMinutes" json:"etaMinutes"` // Estimated travel time at notify time.
}
