package providerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// AcquireBusy claims a provider for a request with a conditional write on
// the available flag, so two assignments cannot both take the same provider.
func (r *MongoProviderRepo) AcquireBusy(ctx context.Context, providerID, requestID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": providerID, "available": true}
	update := bson.M{"$set": bson.M{
		"available":       false,
		"activeRequestId": requestID,
		"updatedAt":       time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error acquiring busy lock for provider %s: %w", providerID, err)
	}
	if res.MatchedCount == 0 {
		return ErrBusy
	}
	return nil
}

// ReleaseBusy frees the provider only if it is still held for the given
// request; a release arriving after a newer assignment is a no-op.
func (r *MongoProviderRepo) ReleaseBusy(ctx context.Context, providerID, requestID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": providerID, "activeRequestId": requestID}
	update := bson.M{
		"$set":   bson.M{"available": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"activeRequestId": ""},
	}
	if _, err := r.coll.UpdateOne(ctxWithTimeout, filter, update); err != nil {
		return fmt.Errorf("error releasing busy lock for provider %s: %w", providerID, err)
	}
	return nil
}

// IncrementCompletedJobs bumps the provider's completion counter.
func (r *MongoProviderRepo) IncrementCompletedJobs(ctx context.Context, providerID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": providerID}
	update := bson.M{
		"$inc": bson.M{"completedJobs": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error incrementing completed jobs for provider %s: %w", providerID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
