package providerRepo

import (
	"context"
	"fmt"
	"time"

	"fundi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FindNearby runs a $geoNear pipeline over the directory. $geoNear must come
// first in the pipeline; it filters and sorts by distance in one pass.
func (r *MongoProviderRepo) FindNearby(ctx context.Context, origin models.GeoPoint, radiusKm float64, category string, limit int, excludeIDs []string) ([]models.Provider, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if len(origin.Coordinates) < 2 {
		return nil, fmt.Errorf("invalid search origin coordinates")
	}

	pipeline := mongo.Pipeline{
		bson.D{
			{Key: "$geoNear", Value: bson.D{
				{Key: "near", Value: bson.D{
					{Key: "type", Value: "Point"},
					{Key: "coordinates", Value: origin.Coordinates},
				}},
				{Key: "distanceField", Value: "distance"},
				{Key: "spherical", Value: true},
				{Key: "maxDistance", Value: radiusKm * 1000},
			}},
		},
	}

	matchFilter := bson.M{
		"available": true,
		"category":  category,
	}
	if len(excludeIDs) > 0 {
		matchFilter["id"] = bson.M{"$nin": excludeIDs}
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter}})

	// Nearest first; rating breaks ties between equally close providers.
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "distance", Value: 1},
		{Key: "rating", Value: -1},
	}}})

	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cursor, err := r.coll.Aggregate(ctxWithTimeout, pipeline)
	if err != nil {
		return nil, fmt.Errorf("geo search query failed: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var providers []models.Provider
	if err := cursor.All(ctxWithTimeout, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}
