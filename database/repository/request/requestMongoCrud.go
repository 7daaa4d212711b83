package requestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new request document.
func (r *MongoRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctxWithTimeout, req)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by its internal id.
func (r *MongoRequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching request %s: %w", id, err)
	}
	return &req, nil
}

// GetByDisplayID retrieves a request by its external display id.
func (r *MongoRequestRepo) GetByDisplayID(ctx context.Context, displayID string) (*models.ServiceRequest, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	err := r.coll.FindOne(ctxWithTimeout, bson.M{"displayId": displayID}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching request %s: %w", displayID, err)
	}
	return &req, nil
}
