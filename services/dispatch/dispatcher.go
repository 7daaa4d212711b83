package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundi/config"
	providerRepo "fundi/database/repository/provider"
	requestRepo "fundi/database/repository/request"
	"fundi/models"
	"fundi/services/booking"
	"fundi/services/notification"
	"fundi/utils"

	"go.uber.org/zap"
)

// DefaultDispatchEngine implements DispatchService. One RunSearch call is
// one delivery of the durable search job; the queue is at-least-once and
// multi-worker, so every path re-checks the request's current status before
// acting.
type DefaultDispatchEngine struct {
	Requests  requestRepo.RequestRepository
	Providers providerRepo.ProviderRepository
	Notifier  notification.NotificationService
	Queue     Enqueuer
	Estimator *booking.Estimator
	Config    config.DispatchConfig
	Logger    *zap.Logger
}

func (e *DefaultDispatchEngine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return utils.GetLogger()
}

// EnqueueSearch schedules a search job for the request.
func (e *DefaultDispatchEngine) EnqueueSearch(ctx context.Context, requestID string, delay time.Duration) error {
	return e.Queue.EnqueueSearch(ctx, requestID, delay)
}

// RunSearch executes one search attempt for the request. A returned error
// drives a queue-level retry; otherwise the outcome has been persisted.
func (e *DefaultDispatchEngine) RunSearch(ctx context.Context, requestID string) (Outcome, error) {
	req, err := e.Requests.GetByID(ctx, requestID)
	if errors.Is(err, requestRepo.ErrNotFound) {
		// A job for a request that does not exist cannot succeed later.
		e.logger().Warn("search job for unknown request", zap.String("requestId", requestID))
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load request %s: %w", requestID, err)
	}
	if req.Status != models.StatusSearching {
		return OutcomeSkipped, nil
	}

	// With a response window configured, re-entry expires offers the
	// previous attempt left pending before searching again.
	if e.Config.OfferResponseTimeout > 0 && req.HasPendingOffers() {
		if err := e.Requests.TimeoutPendingOffers(ctx, requestID, time.Now().UTC()); err != nil {
			return "", fmt.Errorf("failed to expire stale offers on request %s: %w", requestID, err)
		}
	}

	candidates, err := e.Providers.FindNearby(ctx, req.LocationGeo, req.SearchRadiusKm,
		req.Category, e.Config.MaxCandidates, req.OfferedProviderIDs())
	if err != nil {
		return "", fmt.Errorf("provider directory query failed for request %s: %w", requestID, err)
	}

	if len(candidates) == 0 {
		return e.handleNoMatches(ctx, req)
	}
	return e.handleMatches(ctx, req, candidates)
}

// handleNoMatches widens the radius and retries, or gives up when the
// attempt/radius bounds are hit.
func (e *DefaultDispatchEngine) handleNoMatches(ctx context.Context, req *models.ServiceRequest) (Outcome, error) {
	if req.SearchAttempts < e.Config.MaxSearchAttempts && req.SearchRadiusKm < req.MaxSearchRadiusKm {
		newRadius := req.SearchRadiusKm + e.Config.SearchRadiusStepKm
		if newRadius > req.MaxSearchRadiusKm {
			newRadius = req.MaxSearchRadiusKm
		}

		err := e.Requests.ExpandSearch(ctx, req.ID, newRadius, e.Config.MaxSearchAttempts)
		if errors.Is(err, requestRepo.ErrPreconditionFailed) {
			// Either the request moved on, or a concurrent delivery of the
			// same job already consumed this expansion.
			return OutcomeSkipped, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to expand search for request %s: %w", req.ID, err)
		}

		delay := time.Duration(e.Config.SearchRetryDelaySec) * time.Second
		if err := e.Queue.EnqueueSearch(ctx, req.ID, delay); err != nil {
			// The expansion is persisted but no follow-up job exists; fail
			// the delivery so the queue redelivers and re-enqueues.
			return "", fmt.Errorf("failed to re-enqueue search for request %s: %w", req.ID, err)
		}

		e.logger().Info("search expanded",
			zap.String("requestId", req.ID),
			zap.Float64("radiusKm", newRadius),
			zap.Int("attempts", req.SearchAttempts+1),
		)
		return OutcomeExpanded, nil
	}

	err := e.Requests.UpdateStatus(ctx, req.ID, models.StatusSearching,
		models.StatusNoProviderFound, time.Now().UTC())
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to mark request %s exhausted: %w", req.ID, err)
	}

	if nErr := e.Notifier.NotifyRequester(ctx, req.UserID, "No provider found",
		"We could not find an available provider for your request. Please try again later.",
		map[string]string{"requestId": req.ID}); nErr != nil {
		e.logger().Warn("failed to notify requester of exhaustion",
			zap.String("requestId", req.ID), zap.Error(nErr))
	}

	e.logger().Info("search exhausted",
		zap.String("requestId", req.ID),
		zap.Int("attempts", req.SearchAttempts),
		zap.Float64("radiusKm", req.SearchRadiusKm),
	)
	return OutcomeExhausted, nil
}

// handleMatches records offers for every candidate atomically, then notifies
// each of them best-effort.
func (e *DefaultDispatchEngine) handleMatches(ctx context.Context, req *models.ServiceRequest, candidates []models.Provider) (Outcome, error) {
	now := time.Now().UTC()
	offers := make([]models.Offer, 0, len(candidates))
	for _, p := range candidates {
		distKm, etaMin := e.Estimator.Estimate(
			p.LocationGeo.Lat(), p.LocationGeo.Lng(),
			req.LocationGeo.Lat(), req.LocationGeo.Lng(), now)
		offers = append(offers, models.Offer{
			ProviderID: p.ID,
			NotifiedAt: now,
			Response:   models.OfferPending,
			DistanceKm: distKm,
			EtaMinutes: etaMin,
		})
	}

	err := e.Requests.AppendOffers(ctx, req.ID, offers)
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to append offers to request %s: %w", req.ID, err)
	}

	for _, offer := range offers {
		if nErr := e.Notifier.NotifyProvider(ctx, offer.ProviderID, "New service request",
			fmt.Sprintf("A %s request is available %.1f km away.", req.Category, offer.DistanceKm),
			map[string]string{"requestId": req.ID}); nErr != nil {
			e.logger().Warn("failed to notify candidate",
				zap.String("requestId", req.ID),
				zap.String("providerId", offer.ProviderID),
				zap.Error(nErr),
			)
		}
	}

	// With a response window configured, schedule the follow-up that expires
	// these offers and searches again if nobody takes the job.
	if e.Config.OfferResponseTimeout > 0 {
		delay := time.Duration(e.Config.OfferResponseTimeout) * time.Second
		if err := e.Queue.EnqueueSearch(ctx, req.ID, delay); err != nil {
			e.logger().Error("failed to schedule offer expiry",
				zap.String("requestId", req.ID), zap.Error(err))
		}
	}

	e.logger().Info("candidates offered",
		zap.String("requestId", req.ID),
		zap.Int("count", len(offers)),
		zap.Float64("radiusKm", req.SearchRadiusKm),
	)
	return OutcomeFound, nil
}
