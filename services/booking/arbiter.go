package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	providerRepo "fundi/database/repository/provider"
	requestRepo "fundi/database/repository/request"
	"fundi/models"
	"fundi/utils"

	"go.uber.org/zap"
)

// Accept resolves the acceptance race. The assignment is a single atomic
// conditional write in the request store, so two providers accepting
// concurrently cannot both win: the loser's write matches nothing and comes
// back as an invalid-state error, never a silent success.
func (s *DefaultBookingService) Accept(ctx context.Context, requestID, providerID string) (*models.ServiceRequest, error) {
	now := time.Now().UTC()

	req, err := s.Requests.AssignProviderIfSearching(ctx, requestID, providerID, now)
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		return nil, utils.NewInvalidStateError("booking no longer available")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept request %s: %w", requestID, err)
	}

	// Busy lock closes the double-booking window. Acquisition failure means
	// the provider accepted while already attached elsewhere; the assignment
	// stands (last-writer-wins on the flag) but is worth flagging loudly.
	if err := s.Providers.AcquireBusy(ctx, providerID, requestID); err != nil {
		if errors.Is(err, providerRepo.ErrBusy) {
			s.logger().Warn("provider accepted while busy",
				zap.String("providerId", providerID),
				zap.String("requestId", requestID),
			)
		} else {
			s.logger().Error("failed to acquire provider busy lock",
				zap.String("providerId", providerID), zap.Error(err))
		}
	}

	// The race is settled; every other pending offer is dead.
	if err := s.Requests.TimeoutPendingOffers(ctx, requestID, now); err != nil {
		s.logger().Error("failed to timeout remaining offers",
			zap.String("requestId", requestID), zap.Error(err))
	}

	s.notifyRequester(ctx, req.UserID, "Provider assigned",
		"A provider has accepted your request and will be on their way shortly.",
		map[string]string{"requestId": req.ID, "providerId": providerID})

	s.logger().Info("request accepted",
		zap.String("requestId", requestID),
		zap.String("providerId", providerID),
	)
	return req, nil
}

// Reject closes this provider's pending offer. The request keeps searching:
// other offers stay open. When the last pending offer closes, a fresh search
// is queued immediately so the request does not sit waiting for the next
// scheduled attempt that, without a response window, may never come.
func (s *DefaultBookingService) Reject(ctx context.Context, requestID, providerID string) error {
	err := s.Requests.SetOfferResponse(ctx, requestID, providerID, models.OfferRejected, time.Now().UTC())
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		return utils.NewInvalidStateError("no pending offer for this provider")
	}
	if err != nil {
		return fmt.Errorf("failed to reject request %s: %w", requestID, err)
	}

	if req, err := s.Requests.GetByID(ctx, requestID); err == nil &&
		req.Status == models.StatusSearching && !req.HasPendingOffers() {
		if err := s.Dispatch.EnqueueSearch(ctx, requestID, 0); err != nil {
			s.logger().Error("failed to re-enqueue search after final rejection",
				zap.String("requestId", requestID), zap.Error(err))
		}
	}

	s.logger().Info("offer rejected",
		zap.String("requestId", requestID),
		zap.String("providerId", providerID),
	)
	return nil
}
