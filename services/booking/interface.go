package booking

import (
	"context"
	"time"

	"fundi/models"
)

// SearchEnqueuer schedules dispatch search jobs on the durable queue.
// Implemented by the dispatch engine.
type SearchEnqueuer interface {
	EnqueueSearch(ctx context.Context, requestID string, delay time.Duration) error
}

// CreateRequestInput is the payload for posting a new service request.
type CreateRequestInput struct {
	UserID      string
	Category    string
	Lat         float64
	Lng         float64
	TotalAmount float64
}

// CancellationResult reports the fee split computed by the cancellation policy.
type CancellationResult struct {
	Charge float64 `json:"charge"`
	Refund float64 `json:"refund"`
}

// BookingService drives a service request through its lifecycle: acceptance
// arbitration, provider status updates, cancellation and live tracking.
type BookingService interface {
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.ServiceRequest, error)
	GetRequest(ctx context.Context, requestID, actorID string) (*models.ServiceRequest, error)
	// GetRequestByDisplayID resolves the short external reference customers
	// quote in support flows.
	GetRequestByDisplayID(ctx context.Context, displayID, actorID string) (*models.ServiceRequest, error)
	// Accept resolves the acceptance race: exactly one provider wins, every
	// other caller receives an invalid-state error.
	Accept(ctx context.Context, requestID, providerID string) (*models.ServiceRequest, error)
	// Reject closes this provider's pending offer without touching the
	// request status; other offers remain open.
	Reject(ctx context.Context, requestID, providerID string) error
	// UpdateStatus applies a provider-driven lifecycle transition.
	UpdateStatus(ctx context.Context, requestID, providerID, next string) (*models.ServiceRequest, error)
	// Cancel applies the cancellation policy for the request's current state.
	Cancel(ctx context.Context, requestID, userID, reason string) (*CancellationResult, error)
	UpdateLocation(ctx context.Context, requestID, providerID string, lat, lng float64) (*models.TrackingInfo, error)
	GetTracking(ctx context.Context, requestID, actorID string) (*models.TrackingInfo, error)
	// AdminOverride force-sets a status outside the transition table. Rare,
	// always audited.
	AdminOverride(ctx context.Context, requestID, toStatus, actor string) error
}
