package requestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExpandSearch widens the radius and bumps the attempt counter while the
// request is still searching. The filter also re-checks the attempt and
// radius bounds: two workers delivering the same job both pass the
// in-memory check, but only one matches here; the loser gets
// ErrPreconditionFailed. $max keeps the radius non-decreasing even if a
// duplicate job delivery replays an older expansion.
func (r *MongoRequestRepo) ExpandSearch(ctx context.Context, id string, newRadiusKm float64, maxAttempts int) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":             id,
		"status":         models.StatusSearching,
		"searchAttempts": bson.M{"$lt": maxAttempts},
		"$expr":          bson.M{"$lt": bson.A{"$searchRadiusKm", "$maxSearchRadiusKm"}},
	}
	update := bson.M{
		"$inc": bson.M{"searchAttempts": 1},
		"$max": bson.M{"searchRadiusKm": newRadiusKm},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error expanding search for request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// AppendOffers pushes all offers in one write so they land atomically with
// the request document.
func (r *MongoRequestRepo) AppendOffers(ctx context.Context, id string, offers []models.Offer) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusSearching}
	update := bson.M{
		"$push": bson.M{"offers": bson.M{"$each": offers}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error appending offers to request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// AssignProviderIfSearching performs the acceptance compare-and-swap. The
// filter requires status=searching and a pending offer for the provider, so
// of two racing acceptors exactly one matches; the loser gets
// ErrPreconditionFailed.
func (r *MongoRequestRepo) AssignProviderIfSearching(ctx context.Context, id, providerID string, now time.Time) (*models.ServiceRequest, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": models.StatusSearching,
		"offers": bson.M{"$elemMatch": bson.M{
			"providerId": providerID,
			"response":   models.OfferPending,
		}},
	}
	update := bson.M{"$set": bson.M{
		"status":                                      models.StatusProviderAssigned,
		"providerId":                                  providerID,
		"offers.$.response":                           models.OfferAccepted,
		"offers.$.respondedAt":                        now,
		"timestamps." + models.StatusProviderAssigned: now,
		"updatedAt":                                   now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.ServiceRequest
	err := r.coll.FindOneAndUpdate(ctxWithTimeout, filter, update, opts).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPreconditionFailed
	}
	if err != nil {
		return nil, fmt.Errorf("error assigning provider on request %s: %w", id, err)
	}
	return &req, nil
}

// TimeoutPendingOffers flips every remaining pending offer to timeout.
func (r *MongoRequestRepo) TimeoutPendingOffers(ctx context.Context, id string, now time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"offers.$[o].response":    models.OfferTimeout,
		"offers.$[o].respondedAt": now,
		"updatedAt":               now,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"o.response": models.OfferPending}},
	})
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update, opts)
	if err != nil {
		return fmt.Errorf("error timing out offers on request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOfferResponse records a response on a provider's pending offer.
// Pending-only filter keeps responses monotonic.
func (r *MongoRequestRepo) SetOfferResponse(ctx context.Context, id, providerID, response string, now time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"offers": bson.M{"$elemMatch": bson.M{
			"providerId": providerID,
			"response":   models.OfferPending,
		}},
	}
	update := bson.M{"$set": bson.M{
		"offers.$.response":    response,
		"offers.$.respondedAt": now,
		"updatedAt":            now,
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error setting offer response on request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// UpdateStatus advances the request, conditional on the expected current
// status, and stamps the per-status timestamp.
func (r *MongoRequestRepo) UpdateStatus(ctx context.Context, id, from, to string, now time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":            to,
		"timestamps." + to: now,
		"updatedAt":         now,
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating status of request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// SetCancelled marks the request cancelled with fee metadata, conditional on
// the status the caller computed the fee against.
func (r *MongoRequestRepo) SetCancelled(ctx context.Context, id, fromStatus string, upd CancelUpdate) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": fromStatus}
	update := bson.M{"$set": bson.M{
		"status":                                models.StatusCancelled,
		"cancellationReason":                    upd.Reason,
		"cancelledBy":                           upd.CancelledBy,
		"cancellationCharge":                    upd.Charge,
		"cancellationRefund":                    upd.Refund,
		"timestamps." + models.StatusCancelled: upd.Now,
		"updatedAt":                             upd.Now,
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error cancelling request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// SetTracking persists the latest tracking snapshot. The status guard keeps
// a late location report from writing into a settled request.
func (r *MongoRequestRepo) SetTracking(ctx context.Context, id string, info models.TrackingInfo) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": []string{
		models.StatusProviderAssigned,
		models.StatusOnTheWay,
		models.StatusInProgress,
	}}}
	update := bson.M{"$set": bson.M{
		"tracking":  info,
		"updatedAt": info.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating tracking on request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPreconditionFailed
	}
	return nil
}

// OverrideStatus force-sets the status. No transition check: this is the
// audited administrative escape hatch.
func (r *MongoRequestRepo) OverrideStatus(ctx context.Context, id, to string, now time.Time) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"status":            to,
		"timestamps." + to: now,
		"updatedAt":         now,
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error overriding status of request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
