package providerRepo

import (
	"fundi/database"

	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "providers"

// MongoProviderRepo is the MongoDB implementation of ProviderRepository.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo returns a repository backed by the shared Mongo client.
func NewMongoProviderRepo() *MongoProviderRepo {
	return &MongoProviderRepo{coll: database.Collection(collectionName)}
}
