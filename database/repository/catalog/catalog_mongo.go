package catalogRepo

import (
	"context"
	"fmt"

	"coachbook/database"
	"coachbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceRepository provides read access to the service catalog.
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRepo creates a catalog repository over the services collection.
func NewMongoServiceRepo() ServiceRepository {
	return &MongoServiceRepo{coll: database.Collection("services")}
}

// GetByID retrieves a service by its unique id.
func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		return nil, fmt.Errorf("failed to fetch service with id %s: %w", id, err)
	}
	return &svc, nil
}
