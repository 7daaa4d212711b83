package requestRepo

import (
	"fundi/database"

	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "requests"

// MongoRequestRepo is the MongoDB implementation of RequestRepository.
type MongoRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoRequestRepo returns a repository backed by the shared Mongo client.
func NewMongoRequestRepo() *MongoRequestRepo {
	return &MongoRequestRepo{coll: database.Collection(collectionName)}
}
