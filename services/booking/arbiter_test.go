package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fundi/models"
	"fundi/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptAssignsProvider(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1", "prov-a", "prov-b"))
	provs := newStubProviderRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(reqs, provs, notifier)

	req, err := svc.Accept(context.Background(), "req-1", "prov-a")
	require.NoError(t, err)

	assert.Equal(t, models.StatusProviderAssigned, req.Status)
	assert.Equal(t, "prov-a", req.ProviderID)
	assert.Contains(t, req.Timestamps, models.StatusProviderAssigned)

	// Busy lock held for the winning request.
	assert.Equal(t, "req-1", provs.busy["prov-a"])

	// Requester learned about the assignment.
	assert.Equal(t, []string{"user-1"}, notifier.requester)

	// The losing offer was flipped to timeout.
	stored, err := reqs.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	for _, offer := range stored.Offers {
		switch offer.ProviderID {
		case "prov-a":
			assert.Equal(t, models.OfferAccepted, offer.Response)
		case "prov-b":
			assert.Equal(t, models.OfferTimeout, offer.Response)
		}
		require.NotNil(t, offer.RespondedAt)
	}
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	providerIDs := []string{"prov-a", "prov-b", "prov-c", "prov-d", "prov-e"}
	reqs := newMemRequestRepo(searchingRequest("req-1", providerIDs...))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	var wg sync.WaitGroup
	errs := make([]error, len(providerIDs))
	for i, pid := range providerIDs {
		wg.Add(1)
		go func(i int, pid string) {
			defer wg.Done()
			_, errs[i] = svc.Accept(context.Background(), "req-1", pid)
		}(i, pid)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var se *utils.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, utils.CodeInvalidState, se.Code)
		assert.Equal(t, "booking no longer available", se.Message)
	}
	assert.Equal(t, 1, winners)

	stored, err := reqs.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProviderAssigned, stored.Status)

	accepted := 0
	for _, offer := range stored.Offers {
		if offer.Response == models.OfferAccepted {
			accepted++
			assert.Equal(t, stored.ProviderID, offer.ProviderID)
		} else {
			assert.Equal(t, models.OfferTimeout, offer.Response)
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestAcceptWithoutPendingOffer(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1", "prov-a"))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	_, err := svc.Accept(context.Background(), "req-1", "prov-stranger")

	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeInvalidState, se.Code)
}

func TestAcceptAfterCancellation(t *testing.T) {
	req := searchingRequest("req-1", "prov-a")
	req.Status = models.StatusCancelled
	reqs := newMemRequestRepo(req)
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	_, err := svc.Accept(context.Background(), "req-1", "prov-a")

	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeInvalidState, se.Code)
}

func TestRejectClosesOnlyOwnOffer(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1", "prov-a", "prov-b"))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	require.NoError(t, svc.Reject(context.Background(), "req-1", "prov-a"))

	stored, err := reqs.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSearching, stored.Status)
	for _, offer := range stored.Offers {
		switch offer.ProviderID {
		case "prov-a":
			assert.Equal(t, models.OfferRejected, offer.Response)
		case "prov-b":
			assert.Equal(t, models.OfferPending, offer.Response)
		}
	}

	// A second reject finds no pending offer.
	err = svc.Reject(context.Background(), "req-1", "prov-a")
	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeInvalidState, se.Code)
}

func TestRejectLastOfferRequeuesSearch(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1", "prov-a", "prov-b"))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})
	enqueuer := svc.Dispatch.(*recordingEnqueuer)

	// One offer still open: the request keeps waiting on it.
	require.NoError(t, svc.Reject(context.Background(), "req-1", "prov-a"))
	assert.Empty(t, enqueuer.jobs)

	// The last pending offer closes: search again right away.
	require.NoError(t, svc.Reject(context.Background(), "req-1", "prov-b"))
	require.Len(t, enqueuer.jobs, 1)
	assert.Equal(t, "req-1", enqueuer.jobs[0].requestID)
	assert.Equal(t, time.Duration(0), enqueuer.jobs[0].delay)
}
