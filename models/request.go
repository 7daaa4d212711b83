package models

import "time"

// Request statuses. Transitions between them are validated by the booking
// lifecycle service; repositories only ever move a request forward.
const (
	StatusSearching        = "searching"
	StatusProviderAssigned = "provider-assigned"
	StatusOnTheWay         = "on-the-way"
	StatusReached          = "reached"
	StatusInProgress       = "in-progress"
	StatusCompleted        = "completed"
	StatusCancelled        = "cancelled"
	StatusNoProviderFound  = "no-provider-found"
)

// ServiceRequest is the persisted booking record. It is never physically
// deleted; terminal requests are retained as immutable history.
type ServiceRequest struct {
	ID                 string               `bson:"id" json:"id"`                                     // Internal UUID.
	DisplayID          string               `bson:"displayId" json:"displayId"`                       // Short external reference, e.g. "SR-3F9A2C".
	UserID             string               `bson:"userId" json:"userId"`                             // Requester.
	ProviderID         string               `bson:"providerId,omitempty" json:"providerId,omitempty"` // Empty until a provider is assigned.
	Category           string               `bson:"category" json:"category"`                         // Service category, e.g. "plumbing".
	LocationGeo        GeoPoint             `bson:"locationGeo" json:"locationGeo"`                   // Service origin.
	TotalAmount        float64              `bson:"totalAmount" json:"totalAmount"`
	Status             string               `bson:"status" json:"status"`
	SearchRadiusKm     float64              `bson:"searchRadiusKm" json:"searchRadiusKm"`       // Current radius, widened on each empty attempt.
	MaxSearchRadiusKm  float64              `bson:"maxSearchRadiusKm" json:"maxSearchRadiusKm"` // Hard ceiling for expansion.
	SearchAttempts     int                  `bson:"searchAttempts" json:"searchAttempts"`
	Offers             []Offer              `bson:"offers" json:"offers"`
	Tracking           TrackingInfo         `bson:"tracking" json:"tracking"`
	Timestamps         map[string]time.Time `bson:"timestamps" json:"timestamps"` // Per-status transition times.
	CancellationReason string               `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledBy        string               `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"` // "user", "provider" or "admin".
	CancellationCharge float64              `bson:"cancellationCharge,omitempty" json:"cancellationCharge,omitempty"`
	CancellationRefund float64              `bson:"cancellationRefund,omitempty" json:"cancellationRefund,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the status never transitions further
// (except through the audited admin override).
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoProviderFound:
		return true
	}
	return false
}

// PendingOffer returns the pending offer held by the given provider, if any.
func (r *ServiceRequest) PendingOffer(providerID string) *Offer {
	for i := range r.Offers {
		if r.Offers[i].ProviderID == providerID && r.Offers[i].Response == OfferPending {
			return &r.Offers[i]
		}
	}
	return nil
}

// HasPendingOffers reports whether any offer on this request is still open.
func (r *ServiceRequest) HasPendingOffers() bool {
	for _, o := range r.Offers {
		if o.Response == OfferPending {
			return true
		}
	}
	return false
}

// OfferedProviderIDs returns the providers already holding an offer on this
// request, regardless of response. Used to exclude them from re-dispatch.
func (r *ServiceRequest) OfferedProviderIDs() []string {
	ids := make([]string, 0, len(r.Offers))
	for _, o := range r.Offers {
		ids = append(ids, o.ProviderID)
	}
	return ids
}
