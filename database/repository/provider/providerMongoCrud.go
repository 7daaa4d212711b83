package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new provider record.
func (r *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctxWithTimeout, provider)
	if err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}
	return nil
}

// GetByID retrieves a provider by its unique id.
func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var provider models.Provider
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&provider)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching provider %s: %w", id, err)
	}
	return &provider, nil
}
