package providerRepo

import (
	"context"
	"errors"

	"fundi/models"
)

var (
	// ErrNotFound is returned when no provider matches the given id.
	ErrNotFound = errors.New("provider not found")
	// ErrBusy is returned when the busy lock could not be acquired because
	// the provider is already attached to another active request.
	ErrBusy = errors.New("provider is not available")
)

// ProviderRepository defines data access for the provider directory.
type ProviderRepository interface {
	// Create inserts a new provider record.
	Create(ctx context.Context, provider *models.Provider) error
	// GetByID retrieves a provider by its unique id.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// FindNearby returns up to limit available providers of the given
	// category within radiusKm of origin, nearest first. Providers in
	// excludeIDs are skipped (they already hold an offer).
	FindNearby(ctx context.Context, origin models.GeoPoint, radiusKm float64, category string, limit int, excludeIDs []string) ([]models.Provider, error)
	// AcquireBusy claims the provider for a request: available -> busy with
	// activeRequestId set. Returns ErrBusy when the provider is taken.
	AcquireBusy(ctx context.Context, providerID, requestID string) error
	// ReleaseBusy frees the provider, conditional on it being held for the
	// given request so a stale release cannot clobber a newer assignment.
	ReleaseBusy(ctx context.Context, providerID, requestID string) error
	// IncrementCompletedJobs bumps the provider's completion counter.
	IncrementCompletedJobs(ctx context.Context, providerID string) error
}
