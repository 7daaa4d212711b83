package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	requestRepo "fundi/database/repository/request"
	"fundi/models"
	"fundi/utils"

	"go.uber.org/zap"
)

// CancellationFee computes the charge/refund split for a cancellation at the
// given status. Free while searching; a flat rate of the total once a
// provider is committed but work has not started.
func CancellationFee(status string, totalAmount, feeRate float64) (charge, refund float64, err error) {
	switch status {
	case models.StatusSearching:
		return 0, totalAmount, nil
	case models.StatusProviderAssigned, models.StatusOnTheWay, models.StatusReached:
		charge = math.Round(totalAmount * feeRate)
		return charge, totalAmount - charge, nil
	case models.StatusInProgress:
		return 0, 0, utils.NewInvalidStateError("cannot cancel a request already in progress")
	default:
		// Terminal statuses: idempotency guard against duplicate cancels.
		return 0, 0, utils.NewInvalidStateError("request is already settled")
	}
}

// Cancel applies the cancellation policy for the request's current state,
// releases any committed provider, and notifies affected parties.
func (s *DefaultBookingService) Cancel(ctx context.Context, requestID, userID, reason string) (*CancellationResult, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, utils.NewUnauthorizedError("actor is not the requester")
	}

	charge, refund, err := CancellationFee(req.Status, req.TotalAmount, s.CancellationFeeRate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.Requests.SetCancelled(ctx, requestID, req.Status, requestRepo.CancelUpdate{
		CancelledBy: "user",
		Reason:      reason,
		Charge:      charge,
		Refund:      refund,
		Now:         now,
	})
	if errors.Is(err, requestRepo.ErrPreconditionFailed) {
		// The status moved between the fee computation and the write; the
		// fee may no longer apply, so the caller has to retry.
		return nil, utils.NewInvalidStateError("request status changed concurrently")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel request %s: %w", requestID, err)
	}

	switch req.Status {
	case models.StatusSearching:
		// Withdraw the outstanding offers and tell the candidates.
		if err := s.Requests.TimeoutPendingOffers(ctx, requestID, now); err != nil {
			s.logger().Error("failed to timeout offers on cancel",
				zap.String("requestId", requestID), zap.Error(err))
		}
		for _, offer := range req.Offers {
			if offer.Response != models.OfferPending {
				continue
			}
			s.notifyProvider(ctx, offer.ProviderID, "Request withdrawn",
				"The service request you were offered has been cancelled.",
				map[string]string{"requestId": req.ID})
		}
	default:
		if err := s.Providers.ReleaseBusy(ctx, req.ProviderID, req.ID); err != nil {
			s.logger().Error("failed to release provider on cancel",
				zap.String("providerId", req.ProviderID), zap.Error(err))
		}
		s.notifyProvider(ctx, req.ProviderID, "Request cancelled",
			"The requester has cancelled the service request.",
			map[string]string{"requestId": req.ID})
	}

	s.logger().Info("request cancelled",
		zap.String("requestId", requestID),
		zap.String("status", req.Status),
		zap.Float64("charge", charge),
		zap.Float64("refund", refund),
	)
	return &CancellationResult{Charge: charge, Refund: refund}, nil
}
