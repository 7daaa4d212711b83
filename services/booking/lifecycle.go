package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	requestRepo "fundi/database/repository/request"
	"fundi/models"
	"fundi/utils"

	"go.uber.org/zap"
)

// providerTransitions is the forward path a provider may drive. Everything
// else (assignment, cancellation, exhaustion) goes through its own flow.
var providerTransitions = map[string]string{
	models.StatusProviderAssigned: models.StatusOnTheWay,
	models.StatusOnTheWay:         models.StatusReached,
	models.StatusReached:          models.StatusInProgress,
	models.StatusInProgress:       models.StatusCompleted,
}

// CanTransition reports whether a provider-driven move from one status to
// the next is listed in the lifecycle table.
func CanTransition(from, to string) bool {
	return providerTransitions[from] == to
}

// UpdateStatus applies a provider-driven lifecycle transition, stamping the
// per-status timestamp. On completion the provider is released back to the
// available pool and their completion counter bumped.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, requestID, providerID, next string) (*models.ServiceRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ProviderID == "" || req.ProviderID != providerID {
		return nil, utils.NewUnauthorizedError("provider is not assigned to this request")
	}
	if !CanTransition(req.Status, next) {
		return nil, utils.NewInvalidStateError(
			fmt.Sprintf("cannot transition from %s to %s", req.Status, next))
	}

	now := time.Now().UTC()
	err = s.Requests.UpdateStatus(ctx, requestID, req.Status, next, now)
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		// Someone moved the request between our read and write.
		return nil, utils.NewInvalidStateError("request status changed concurrently")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update status of request %s: %w", requestID, err)
	}

	if next == models.StatusCompleted {
		s.completeFulfilment(ctx, req)
	}

	s.logger().Info("request status updated",
		zap.String("requestId", requestID),
		zap.String("from", req.Status),
		zap.String("to", next),
	)

	req.Status = next
	req.Timestamps[next] = now
	return req, nil
}

// completeFulfilment runs the completion side effects: release the provider,
// bump their counter, tell the requester, and emit the completion event the
// commission subsystem consumes.
func (s *DefaultBookingService) completeFulfilment(ctx context.Context, req *models.ServiceRequest) {
	if err := s.Providers.ReleaseBusy(ctx, req.ProviderID, req.ID); err != nil {
		s.logger().Error("failed to release provider after completion",
			zap.String("providerId", req.ProviderID), zap.Error(err))
	}
	if err := s.Providers.IncrementCompletedJobs(ctx, req.ProviderID); err != nil {
		s.logger().Error("failed to increment provider completions",
			zap.String("providerId", req.ProviderID), zap.Error(err))
	}

	s.notifyRequester(ctx, req.UserID, "Service completed",
		"Your service request has been completed.",
		map[string]string{"requestId": req.ID})

	// Commission settlement happens downstream off this event.
	s.logger().Info("request completed",
		zap.String("event", "request.completed"),
		zap.String("requestId", req.ID),
		zap.String("providerId", req.ProviderID),
		zap.Float64("totalAmount", req.TotalAmount),
	)
}

// AdminOverride force-sets a status outside the transition table. It is the
// only way a terminal request moves again, and every use is audited.
func (s *DefaultBookingService) AdminOverride(ctx context.Context, requestID, toStatus, actor string) error {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if err := s.Requests.OverrideStatus(ctx, requestID, toStatus, time.Now().UTC()); err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return utils.NewNotFoundError("request not found")
		}
		return fmt.Errorf("failed to override status of request %s: %w", requestID, err)
	}

	s.logger().Warn("administrative status override",
		zap.String("requestId", requestID),
		zap.String("actor", actor),
		zap.String("from", req.Status),
		zap.String("to", toStatus),
	)
	return nil
}
