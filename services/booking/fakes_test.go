package booking

import (
	"context"
	"sync"
	"time"

	providerRepo "fundi/database/repository/provider"
	requestRepo "fundi/database/repository/request"
	"fundi/models"

	"go.uber.org/zap"
)

// memRequestRepo is an in-memory RequestRepository with the same conditional
// write semantics as the Mongo implementation: every status-dependent update
// checks and mutates under one lock, so the acceptance race is faithful.
type memRequestRepo struct {
	mu   sync.Mutex
	reqs map[string]*models.ServiceRequest
}

func newMemRequestRepo(reqs ...*models.ServiceRequest) *memRequestRepo {
	m := &memRequestRepo{reqs: make(map[string]*models.ServiceRequest)}
	for _, r := range reqs {
		m.reqs[r.ID] = cloneRequest(r)
	}
	return m
}

func cloneRequest(r *models.ServiceRequest) *models.ServiceRequest {
	cp := *r
	cp.Offers = append([]models.Offer(nil), r.Offers...)
	cp.Timestamps = make(map[string]time.Time, len(r.Timestamps))
	for k, v := range r.Timestamps {
		cp.Timestamps[k] = v
	}
	return &cp
}

func (m *memRequestRepo) Create(_ context.Context, req *models.ServiceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs[req.ID] = cloneRequest(req)
	return nil
}

func (m *memRequestRepo) GetByID(_ context.Context, id string) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	return cloneRequest(r), nil
}

func (m *memRequestRepo) GetByDisplayID(_ context.Context, displayID string) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reqs {
		if r.DisplayID == displayID {
			return cloneRequest(r), nil
		}
	}
	return nil, requestRepo.ErrNotFound
}

func (m *memRequestRepo) ExpandSearch(_ context.Context, id string, newRadiusKm float64, maxAttempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok || r.Status != models.StatusSearching ||
		r.SearchAttempts >= maxAttempts || r.SearchRadiusKm >= r.MaxSearchRadiusKm {
		return requestRepo.ErrPreconditionFailed
	}
	r.SearchAttempts++
	if newRadiusKm > r.SearchRadiusKm {
		r.SearchRadiusKm = newRadiusKm
	}
	return nil
}

func (m *memRequestRepo) AppendOffers(_ context.Context, id string, offers []models.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok || r.Status != models.StatusSearching {
		return requestRepo.ErrPreconditionFailed
	}
	r.Offers = append(r.Offers, offers...)
	return nil
}

func (m *memRequestRepo) AssignProviderIfSearching(_ context.Context, id, providerID string, now time.Time) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok || r.Status != models.StatusSearching {
		return nil, requestRepo.ErrPreconditionFailed
	}
	for i := range r.Offers {
		if r.Offers[i].ProviderID == providerID && r.Offers[i].Response == models.OfferPending {
			r.Offers[i].Response = models.OfferAccepted
			respondedAt := now
			r.Offers[i].RespondedAt = &respondedAt
			r.Status = models.StatusProviderAssigned
			r.ProviderID = providerID
			r.Timestamps[models.StatusProviderAssigned] = now
			return cloneRequest(r), nil
		}
	}
	return nil, requestRepo.ErrPreconditionFailed
}

func (m *memRequestRepo) TimeoutPendingOffers(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok {
		return requestRepo.ErrNotFound
	}
	for i := range r.Offers {
		if r.Offers[i].Response == models.OfferPending {
			r.Offers[i].Response = models.OfferTimeout
			respondedAt := now
			r.Offers[i].RespondedAt = &respondedAt
		}
	}
	return nil
}

func (m *memRequestRepo) SetOfferResponse(_ context.Context, id, providerID, response string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok {
		return requestRepo.ErrPreconditionFailed
	}
	for i := range r.Offers {
		if r.Offers[i].ProviderID == providerID && r.Offers[i].Response == models.OfferPending {
			r.Offers[i].Response = response
			respondedAt := now
			r.Offers[i].RespondedAt = &respondedAt
			return nil
		}
	}
	return requestRepo.ErrPreconditionFailed
}

func (m *memRequestRepo) UpdateStatus(_ context.Context, id, from, to string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok || r.Status != from {
		return requestRepo.ErrPreconditionFailed
	}
	r.Status = to
	r.Timestamps[to] = now
	return nil
}

func (m *memRequestRepo) SetCancelled(_ context.Context, id, fromStatus string, upd requestRepo.CancelUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok || r.Status != fromStatus {
		return requestRepo.ErrPreconditionFailed
	}
	r.Status = models.StatusCancelled
	r.CancelledBy = upd.CancelledBy
	r.CancellationReason = upd.Reason
	r.CancellationCharge = upd.Charge
	r.CancellationRefund = upd.Refund
	r.Timestamps[models.StatusCancelled] = upd.Now
	return nil
}

func (m *memRequestRepo) SetTracking(_ context.Context, id string, info models.TrackingInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok {
		return requestRepo.ErrPreconditionFailed
	}
	switch r.Status {
	case models.StatusProviderAssigned, models.StatusOnTheWay, models.StatusInProgress:
		r.Tracking = info
		return nil
	}
	return requestRepo.ErrPreconditionFailed
}

func (m *memRequestRepo) OverrideStatus(_ context.Context, id, to string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reqs[id]
	if !ok {
		return requestRepo.ErrNotFound
	}
	r.Status = to
	r.Timestamps[to] = now
	return nil
}

// stubProviderRepo records busy-lock traffic and completion counts.
type stubProviderRepo struct {
	mu          sync.Mutex
	busy        map[string]string // providerID -> requestID
	completions map[string]int
}

func newStubProviderRepo() *stubProviderRepo {
	return &stubProviderRepo{busy: map[string]string{}, completions: map[string]int{}}
}

func (s *stubProviderRepo) Create(context.Context, *models.Provider) error { return nil }

func (s *stubProviderRepo) GetByID(_ context.Context, id string) (*models.Provider, error) {
	return &models.Provider{ID: id}, nil
}

func (s *stubProviderRepo) FindNearby(context.Context, models.GeoPoint, float64, string, int, []string) ([]models.Provider, error) {
	return nil, nil
}

func (s *stubProviderRepo) AcquireBusy(_ context.Context, providerID, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.busy[providerID]; taken {
		return providerRepo.ErrBusy
	}
	s.busy[providerID] = requestID
	return nil
}

func (s *stubProviderRepo) ReleaseBusy(_ context.Context, providerID, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[providerID] == requestID {
		delete(s.busy, providerID)
	}
	return nil
}

func (s *stubProviderRepo) IncrementCompletedJobs(_ context.Context, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[providerID]++
	return nil
}

// recordingNotifier captures pushes for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	requester []string // userIDs notified
	provider  []string // providerIDs notified
}

func (n *recordingNotifier) NotifyRequester(_ context.Context, userID, _, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requester = append(n.requester, userID)
	return nil
}

func (n *recordingNotifier) NotifyProvider(_ context.Context, providerID, _, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.provider = append(n.provider, providerID)
	return nil
}

// recordingEnqueuer captures scheduled search jobs.
type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []scheduledJob
}

type scheduledJob struct {
	requestID string
	delay     time.Duration
}

func (e *recordingEnqueuer) EnqueueSearch(_ context.Context, requestID string, delay time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, scheduledJob{requestID: requestID, delay: delay})
	return nil
}

// newTestService wires a booking service over the in-memory fakes.
func newTestService(reqs *memRequestRepo, provs *stubProviderRepo, notifier *recordingNotifier) *DefaultBookingService {
	return &DefaultBookingService{
		Requests:              reqs,
		Providers:             provs,
		Notifier:              notifier,
		Estimator:             NewEstimator(40, UnitAdjustment{}),
		Dispatch:              &recordingEnqueuer{},
		Logger:                zap.NewNop(),
		SearchRadiusKm:        5,
		MaxSearchRadiusKm:     20,
		CancellationFeeRate:   0.20,
		NearbyThresholdMeters: 500,
	}
}

// searchingRequest builds a request in the searching state with pending
// offers for the given providers.
func searchingRequest(id string, providerIDs ...string) *models.ServiceRequest {
	now := time.Now().UTC()
	offers := make([]models.Offer, 0, len(providerIDs))
	for _, pid := range providerIDs {
		offers = append(offers, models.Offer{
			ProviderID: pid,
			NotifiedAt: now,
			Response:   models.OfferPending,
			DistanceKm: 2.5,
			EtaMinutes: 4,
		})
	}
	return &models.ServiceRequest{
		ID:                id,
		DisplayID:         "SR-" + id,
		UserID:            "user-1",
		Category:          "plumbing",
		LocationGeo:       models.NewGeoPoint(-1.2921, 36.8219),
		TotalAmount:       1500,
		Status:            models.StatusSearching,
		SearchRadiusKm:    5,
		MaxSearchRadiusKm: 20,
		Offers:            offers,
		Timestamps:        map[string]time.Time{models.StatusSearching: now},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
