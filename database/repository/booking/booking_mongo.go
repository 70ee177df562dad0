package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"coachbook/database"
	"coachbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new booking repository over the bookings collection.
func NewMongoBookingRepo() BookingRepository {
	coll := database.Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "payment_intent_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create persists the booking and returns its assigned id.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) (string, error) {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return "", fmt.Errorf("failed to insert booking: %w", err)
	}
	return booking.ID, nil
}

// GetByID retrieves a booking by its id.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// Cancel marks the booking cancelled, releasing its time slot.
func (r *MongoBookingRepo) Cancel(ctx context.Context, id string) error {
	now := time.Now().UTC()
	// The status filter keeps the transition one-way; a booking already
	// cancelled is left untouched.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": bson.M{"$ne": models.BookingStatusCancelled}},
		bson.M{"$set": bson.M{"status": models.BookingStatusCancelled, "cancelled_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel booking %s: %w", id, err)
	}
	return nil
}

// AttachPaymentIntent records the payment reference on a pending booking.
func (r *MongoBookingRepo) AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": models.BookingStatusPending},
		bson.M{"$set": bson.M{"payment_intent_id": paymentIntentID}},
	)
	if err != nil {
		return fmt.Errorf("failed to attach payment intent to booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no pending booking with id %s", id)
	}
	return nil
}

// MarkPaid confirms the pending booking carrying the payment reference. The
// filtered update makes repeat calls for the same reference no-ops.
func (r *MongoBookingRepo) MarkPaid(ctx context.Context, paymentIntentID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"payment_intent_id": paymentIntentID, "status": models.BookingStatusPending},
		bson.M{"$set": bson.M{"status": models.BookingStatusConfirmed}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid for intent %s: %w", paymentIntentID, err)
	}
	return nil
}

// FindStalePending lists pending bookings created before the cutoff.
func (r *MongoBookingRepo) FindStalePending(ctx context.Context, olderThan time.Time) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"status":     models.BookingStatusPending,
		"created_at": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode stale pending bookings: %w", err)
	}
	return bookings, nil
}
