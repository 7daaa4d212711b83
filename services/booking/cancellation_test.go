package booking

import (
	"context"
	"errors"
	"math"
	"testing"

	"fundi/models"
	"fundi/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellationFee(t *testing.T) {
	const total = 1500.0
	const rate = 0.20

	cases := []struct {
		name    string
		status  string
		charge  float64
		refund  float64
		wantErr bool
	}{
		{name: "free while searching", status: models.StatusSearching, charge: 0, refund: total},
		{name: "fee once assigned", status: models.StatusProviderAssigned, charge: 300, refund: 1200},
		{name: "fee on the way", status: models.StatusOnTheWay, charge: 300, refund: 1200},
		{name: "fee when reached", status: models.StatusReached, charge: 300, refund: 1200},
		{name: "blocked in progress", status: models.StatusInProgress, wantErr: true},
		{name: "blocked when completed", status: models.StatusCompleted, wantErr: true},
		{name: "blocked when cancelled", status: models.StatusCancelled, wantErr: true},
		{name: "blocked when exhausted", status: models.StatusNoProviderFound, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			charge, refund, err := CancellationFee(tc.status, total, rate)
			if tc.wantErr {
				var se *utils.ServiceError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, utils.CodeInvalidState, se.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.charge, charge)
			assert.Equal(t, tc.refund, refund)
			assert.Equal(t, total, charge+refund)
		})
	}
}

func TestCancellationFeeRoundsCharge(t *testing.T) {
	charge, refund, err := CancellationFee(models.StatusOnTheWay, 1234.56, 0.20)
	require.NoError(t, err)
	assert.Equal(t, math.Round(1234.56*0.20), charge)
	assert.Equal(t, 1234.56-charge, refund)
}

func TestCancelWhileSearching(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1", "prov-a", "prov-b"))
	notifier := &recordingNotifier{}
	svc := newTestService(reqs, newStubProviderRepo(), notifier)

	res, err := svc.Cancel(context.Background(), "req-1", "user-1", "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Charge)
	assert.Equal(t, 1500.0, res.Refund)

	stored, err := reqs.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, "user", stored.CancelledBy)
	assert.Equal(t, "changed my mind", stored.CancellationReason)
	for _, offer := range stored.Offers {
		assert.Equal(t, models.OfferTimeout, offer.Response)
	}

	// Every candidate with an open offer was told the request is gone.
	assert.ElementsMatch(t, []string{"prov-a", "prov-b"}, notifier.provider)
}

func TestCancelAfterAssignmentChargesFee(t *testing.T) {
	reqs := newMemRequestRepo(assignedRequest("req-1", models.StatusOnTheWay))
	provs := newStubProviderRepo()
	provs.busy["prov-a"] = "req-1"
	notifier := &recordingNotifier{}
	svc := newTestService(reqs, provs, notifier)

	res, err := svc.Cancel(context.Background(), "req-1", "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Charge)
	assert.Equal(t, 1200.0, res.Refund)

	stored, err := reqs.GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, 300.0, stored.CancellationCharge)
	assert.Equal(t, 1200.0, stored.CancellationRefund)

	// The committed provider was released and notified.
	assert.NotContains(t, provs.busy, "prov-a")
	assert.Equal(t, []string{"prov-a"}, notifier.provider)
}

func TestCancelInProgressRejected(t *testing.T) {
	reqs := newMemRequestRepo(assignedRequest("req-1", models.StatusInProgress))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	_, err := svc.Cancel(context.Background(), "req-1", "user-1", "")

	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeInvalidState, se.Code)
}

func TestCancelTwiceRejected(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1"))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	_, err := svc.Cancel(context.Background(), "req-1", "user-1", "")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "req-1", "user-1", "")
	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeInvalidState, se.Code)
}

func TestCancelByNonRequester(t *testing.T) {
	reqs := newMemRequestRepo(searchingRequest("req-1"))
	svc := newTestService(reqs, newStubProviderRepo(), &recordingNotifier{})

	_, err := svc.Cancel(context.Background(), "req-1", "user-other", "")

	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeUnauthorized, se.Code)
}
