package bookingRepo

import (
	"context"
	"time"

	"coachbook/models"
)

// BookingRepository is the booking store consumed by the saga orchestrator.
type BookingRepository interface {
	// Create persists the booking and returns its assigned id.
	Create(ctx context.Context, booking *models.Booking) (string, error)
	// GetByID retrieves a booking by its id.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Cancel marks a booking cancelled, releasing its time slot. Cancelled
	// bookings never transition back.
	Cancel(ctx context.Context, id string) error
	// AttachPaymentIntent records the payment reference on a pending booking
	// so the later success notification can locate it.
	AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error
	// MarkPaid flips the pending booking carrying this payment reference to
	// confirmed. Safe to call repeatedly for the same reference.
	MarkPaid(ctx context.Context, paymentIntentID string) error
	// FindStalePending lists pending bookings created before the cutoff, for
	// the orphan sweeper.
	FindStalePending(ctx context.Context, olderThan time.Time) ([]models.Booking, error)
}
