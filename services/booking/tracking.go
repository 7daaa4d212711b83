package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	requestRepo "fundi/database/repository/request"
	"fundi/models"
	"fundi/utils"

	"go.uber.org/zap"
)

const trackingSnapshotTTL = 2 * time.Minute

func trackingKey(requestID string) string {
	return "tracking:" + requestID
}

// trackableStatuses are the states in which a provider may report location.
func trackable(status string) bool {
	switch status {
	case models.StatusProviderAssigned, models.StatusOnTheWay, models.StatusInProgress:
		return true
	}
	return false
}

// UpdateLocation ingests a live provider location: it recomputes distance
// and ETA to the service origin, persists the snapshot, and fires a one-shot
// "nearby" push when an approaching provider crosses the proximity threshold.
func (s *DefaultBookingService) UpdateLocation(ctx context.Context, requestID, providerID string, lat, lng float64) (*models.TrackingInfo, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, utils.NewValidationError("invalid coordinates")
	}

	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ProviderID != providerID {
		return nil, utils.NewUnauthorizedError("provider is not assigned to this request")
	}
	if !trackable(req.Status) {
		return nil, utils.NewInvalidStateError("request is not in a trackable state")
	}

	now := time.Now().UTC()
	distKm, etaMin := s.Estimator.Estimate(lat, lng, req.LocationGeo.Lat(), req.LocationGeo.Lng(), now)

	info := models.TrackingInfo{
		LastLat:        lat,
		LastLng:        lng,
		DistanceKm:     distKm,
		EtaMinutes:     etaMin,
		UpdatedAt:      now,
		NearbyNotified: req.Tracking.NearbyNotified,
	}

	// Best-effort approach signal, at most once per request.
	if req.Status == models.StatusOnTheWay &&
		distKm*1000 < s.NearbyThresholdMeters &&
		!req.Tracking.NearbyNotified {
		info.NearbyNotified = true
		s.notifyRequester(ctx, req.UserID, "Provider nearby",
			"Your provider is almost there.",
			map[string]string{"requestId": req.ID})
	}

	err = s.Requests.SetTracking(ctx, requestID, info)
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		return nil, utils.NewInvalidStateError("request is not in a trackable state")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist tracking for request %s: %w", requestID, err)
	}

	s.cacheTrackingSnapshot(ctx, requestID, info)
	return &info, nil
}

// GetTracking returns the latest tracking snapshot, preferring the cache.
func (s *DefaultBookingService) GetTracking(ctx context.Context, requestID, actorID string) (*models.TrackingInfo, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actorID != req.UserID && actorID != req.ProviderID {
		return nil, utils.NewUnauthorizedError("actor is not a party to this request")
	}
	if req.Status == models.StatusNoProviderFound {
		// A user outcome rather than a failure: there is no provider to
		// track, and posting a fresh request is the way forward.
		return nil, utils.NewExhaustedError("no provider could be found for this request")
	}

	if s.TrackingCache != nil {
		raw, err := s.TrackingCache.Get(ctx, trackingKey(requestID)).Result()
		if err == nil {
			var info models.TrackingInfo
			if err := json.Unmarshal([]byte(raw), &info); err == nil {
				return &info, nil
			}
		}
	}
	return &req.Tracking, nil
}

func (s *DefaultBookingService) cacheTrackingSnapshot(ctx context.Context, requestID string, info models.TrackingInfo) {
	if s.TrackingCache == nil {
		return
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := s.TrackingCache.Set(ctx, trackingKey(requestID), raw, trackingSnapshotTTL).Err(); err != nil {
		s.logger().Warn("failed to cache tracking snapshot",
			zap.String("requestId", requestID), zap.Error(err))
	}
}
