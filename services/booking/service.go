package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	providerRepo "fundi/database/repository/provider"
	requestRepo "fundi/database/repository/request"
	"fundi/models"
	"fundi/services/notification"
	"fundi/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Requests  requestRepo.RequestRepository
	Providers providerRepo.ProviderRepository
	Notifier  notification.NotificationService
	Estimator *Estimator
	Dispatch  SearchEnqueuer
	// TrackingCache holds live location snapshots for cheap polling reads.
	// Optional; when nil, reads fall through to the request store.
	TrackingCache *redis.Client
	Logger        *zap.Logger

	SearchRadiusKm        float64
	MaxSearchRadiusKm     float64
	CancellationFeeRate   float64
	NearbyThresholdMeters float64
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}

// notifyRequester sends a push to the requester, logging failures. Delivery
// problems never propagate to the calling flow.
func (s *DefaultBookingService) notifyRequester(ctx context.Context, userID, title, body string, data map[string]string) {
	if err := s.Notifier.NotifyRequester(ctx, userID, title, body, data); err != nil {
		s.logger().Warn("failed to notify requester", zap.String("userId", userID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notifyProvider(ctx context.Context, providerID, title, body string, data map[string]string) {
	if err := s.Notifier.NotifyProvider(ctx, providerID, title, body, data); err != nil {
		s.logger().Warn("failed to notify provider", zap.String("providerId", providerID), zap.Error(err))
	}
}

// newDisplayID derives a short external reference from the internal UUID.
func newDisplayID(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	return "SR-" + strings.ToUpper(compact[:6])
}

func validateCreateInput(input CreateRequestInput) error {
	if input.UserID == "" {
		return utils.NewValidationError("userId is required")
	}
	if input.Category == "" {
		return utils.NewValidationError("category is required")
	}
	if input.Lat < -90 || input.Lat > 90 {
		return utils.NewValidationError("latitude must be between -90 and 90")
	}
	if input.Lng < -180 || input.Lng > 180 {
		return utils.NewValidationError("longitude must be between -180 and 180")
	}
	if input.TotalAmount <= 0 {
		return utils.NewValidationError("totalAmount must be positive")
	}
	return nil
}

// CreateRequest persists a new request in the searching state and schedules
// the first dispatch search on the durable queue.
func (s *DefaultBookingService) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.ServiceRequest, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	req := &models.ServiceRequest{
		ID:                id,
		DisplayID:         newDisplayID(id),
		UserID:            input.UserID,
		Category:          input.Category,
		LocationGeo:       models.NewGeoPoint(input.Lat, input.Lng),
		TotalAmount:       input.TotalAmount,
		Status:            models.StatusSearching,
		SearchRadiusKm:    s.SearchRadiusKm,
		MaxSearchRadiusKm: s.MaxSearchRadiusKm,
		Offers:            []models.Offer{},
		Timestamps:        map[string]time.Time{models.StatusSearching: now},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := s.Dispatch.EnqueueSearch(ctx, req.ID, 0); err != nil {
		// The request is persisted; without a queued job it would sit in
		// searching forever, so surface the failure to the caller.
		s.logger().Error("failed to enqueue initial search", zap.String("requestId", req.ID), zap.Error(err))
		return nil, utils.NewExternalServiceError("failed to schedule provider search")
	}

	s.logger().Info("request created",
		zap.String("requestId", req.ID),
		zap.String("displayId", req.DisplayID),
		zap.String("category", req.Category),
	)
	return req, nil
}

// GetRequest returns the request if the actor is a party to it.
func (s *DefaultBookingService) GetRequest(ctx context.Context, requestID, actorID string) (*models.ServiceRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actorID != req.UserID && actorID != req.ProviderID {
		return nil, utils.NewUnauthorizedError("actor is not a party to this request")
	}
	return req, nil
}

// GetRequestByDisplayID returns the request matching the external display id
// if the actor is a party to it.
func (s *DefaultBookingService) GetRequestByDisplayID(ctx context.Context, displayID, actorID string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByDisplayID(ctx, displayID)
	if err == requestRepo.ErrNotFound {
		return nil, utils.NewNotFoundError("request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", displayID, err)
	}
	if actorID != req.UserID && actorID != req.ProviderID {
		return nil, utils.NewUnauthorizedError("actor is not a party to this request")
	}
	return req, nil
}

func (s *DefaultBookingService) getRequest(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if err == requestRepo.ErrNotFound {
		return nil, utils.NewNotFoundError("request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", requestID, err)
	}
	return req, nil
}
