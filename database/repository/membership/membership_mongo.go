package membershipRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachbook/database"
	"coachbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMembershipRepo fetches membership subscriptions from MongoDB. It
// implements the membership service's Repository interface.
type MongoMembershipRepo struct {
	coll *mongo.Collection
}

// NewMongoMembershipRepo creates a new membership repository over the
// memberships collection.
func NewMongoMembershipRepo() *MongoMembershipRepo {
	coll := database.Collection("memberships")
	repo := &MongoMembershipRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create membership indexes: %v\n", err)
	}
	return repo
}

func (r *MongoMembershipRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetCurrentMembership returns the client's most recent subscription, or nil
// when the client has never subscribed. Whether the subscription still grants
// benefits is the resolver's call, not the repository's.
func (r *MongoMembershipRepo) GetCurrentMembership(ctx context.Context, clientID string) (*models.MembershipSubscription, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var sub models.MembershipSubscription
	err := r.coll.FindOne(ctx, bson.M{"client_id": clientID}, opts).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch membership for client %s: %w", clientID, err)
	}
	return &sub, nil
}
