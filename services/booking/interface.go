package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingRepo "coachbook/database/repository/booking"
	"coachbook/models"
	"coachbook/services/membership"
	"coachbook/services/payment"
)

// BookingService runs the booking-confirmation payment workflow.
type BookingService interface {
	// ConfirmBooking executes the full saga for one booking attempt.
	ConfirmBooking(ctx context.Context, draft models.BookingDraft, billing models.BillingDetails) (*BookingResult, error)
	// PreviewSummary computes the price breakdown for a draft without side effects.
	PreviewSummary(ctx context.Context, draft models.BookingDraft) (*SummaryPreview, error)
	// CancelBooking performs a user-initiated cancellation of the client's own booking.
	CancelBooking(ctx context.Context, bookingID, clientID string) error
}

// BookingResult is the outcome of a finalized saga.
type BookingResult struct {
	Booking         models.Booking         `json:"booking"`
	Summary         models.PaymentSummary  `json:"summary"`
	Eligibility     membership.Eligibility `json:"eligibility"`
	PaymentIntentID string                 `json:"paymentIntentId,omitempty"`
}

// SummaryPreview pairs the price breakdown with the eligibility that produced it.
type SummaryPreview struct {
	Summary         models.PaymentSummary  `json:"summary"`
	Eligibility     membership.Eligibility `json:"eligibility"`
	FeeDescription  string                 `json:"feeDescription,omitempty"`
	PaymentsEnabled bool                   `json:"paymentsEnabled"`
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo       bookingRepo.BookingRepository
	Membership membership.Resolver
	Gateway    payment.Gateway
	Config     payment.ConfigSource
	Logger     *zap.Logger
	Clock      func() time.Time // overridable for tests; defaults to time.Now
}

func (s *DefaultBookingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
