package requestRepo

import (
	"context"
	"errors"
	"time"

	"fundi/models"
)

var (
	// ErrNotFound is returned when no request matches the given id.
	ErrNotFound = errors.New("request not found")
	// ErrPreconditionFailed is returned when a conditional update matched no
	// document, i.e. the request moved on since it was read.
	ErrPreconditionFailed = errors.New("request state precondition failed")
)

// CancelUpdate carries the fields written when a request is cancelled.
type CancelUpdate struct {
	CancelledBy string
	Reason      string
	Charge      float64
	Refund      float64
	Now         time.Time
}

// RequestRepository defines data access for service requests. All updates
// that depend on current status are conditional writes: the filter re-checks
// the status so concurrent writers cannot clobber each other.
type RequestRepository interface {
	// Create inserts a new request record.
	Create(ctx context.Context, req *models.ServiceRequest) error
	// GetByID retrieves a request by its internal id.
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	// GetByDisplayID retrieves a request by its external display id.
	GetByDisplayID(ctx context.Context, displayID string) (*models.ServiceRequest, error)
	// ExpandSearch widens the search radius and bumps the attempt counter.
	// Conditional on the request still searching AND the attempt/radius
	// bounds not yet reached, so duplicate job deliveries cannot push the
	// counter past maxAttempts.
	ExpandSearch(ctx context.Context, id string, newRadiusKm float64, maxAttempts int) error
	// AppendOffers pushes the given offers onto the request atomically,
	// only while the request is still searching.
	AppendOffers(ctx context.Context, id string, offers []models.Offer) error
	// AssignProviderIfSearching is the single-winner acceptance write: it
	// assigns the provider, flips their pending offer to accepted and
	// advances the status, all in one conditional update. Returns
	// ErrPreconditionFailed when the request is no longer searching or the
	// provider holds no pending offer.
	AssignProviderIfSearching(ctx context.Context, id, providerID string, now time.Time) (*models.ServiceRequest, error)
	// TimeoutPendingOffers flips every pending offer on the request to timeout.
	TimeoutPendingOffers(ctx context.Context, id string, now time.Time) error
	// SetOfferResponse records a provider's response on their pending offer.
	SetOfferResponse(ctx context.Context, id, providerID, response string, now time.Time) error
	// UpdateStatus moves the request from one status to the next and stamps
	// the per-status timestamp. Conditional on the current status.
	UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error
	// SetCancelled marks the request cancelled with fee metadata, conditional
	// on the status it was read at.
	SetCancelled(ctx context.Context, id, fromStatus string, upd CancelUpdate) error
	// SetTracking persists the latest tracking snapshot.
	SetTracking(ctx context.Context, id string, info models.TrackingInfo) error
	// OverrideStatus force-sets the status regardless of the transition
	// table. Callers are responsible for auditing.
	OverrideStatus(ctx context.Context, id, to string, now time.Time) error
}
