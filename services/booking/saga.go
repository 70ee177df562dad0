package booking

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"coachbook/models"
	"coachbook/services/membership"
	"coachbook/services/payment"
	"coachbook/services/pricing"
)

// sagaPhase tracks where a booking attempt is in the workflow. Compensation
// applies only to failures in phases after bookingPending.
type sagaPhase int

const (
	phaseIdle sagaPhase = iota
	phaseBookingPending
	phasePaymentAuthorizing
	phasePaymentConfirming
	phaseFinalized
	phaseCancelling
	phaseFailed
)

func (p sagaPhase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseBookingPending:
		return "bookingPending"
	case phasePaymentAuthorizing:
		return "paymentAuthorizing"
	case phasePaymentConfirming:
		return "paymentConfirming"
	case phaseFinalized:
		return "finalized"
	case phaseCancelling:
		return "cancelling"
	case phaseFailed:
		return "failed"
	}
	return "unknown"
}

// preflight holds the two independent reads that precede every saga run.
type preflight struct {
	cfg  models.EcommerceConfig
	elig membership.Eligibility
}

// loadPreflight issues the tenant-config and eligibility reads concurrently;
// they are independent and both gate the workflow.
func (s *DefaultBookingService) loadPreflight(ctx context.Context, draft models.BookingDraft) (preflight, error) {
	var (
		pf      preflight
		cfgErr  error
		eligErr error
		wg      sync.WaitGroup
	)
	now := s.now()
	wg.Add(2)
	go func() {
		defer wg.Done()
		pf.cfg, cfgErr = s.Config.GetEcommerceConfig(ctx)
	}()
	go func() {
		defer wg.Done()
		pf.elig, eligErr = s.Membership.ResolveEligibility(ctx, draft.ClientID, draft.Service.ID, now)
	}()
	wg.Wait()

	if cfgErr != nil {
		return pf, fmt.Errorf("failed to load ecommerce config: %w", cfgErr)
	}
	if eligErr != nil {
		return pf, fmt.Errorf("failed to resolve membership eligibility: %w", eligErr)
	}
	return pf, nil
}

// validateDraft enforces the saga preconditions. Violations are rejected here,
// before any side effect, so no compensation is ever needed for them.
func validateDraft(draft models.BookingDraft, elig membership.Eligibility) error {
	if draft.ClientID == "" {
		return NewPreconditionError("A client must be selected before booking.")
	}
	if draft.Service.ID == "" {
		return NewPreconditionError("A service must be selected before booking.")
	}
	if draft.Service.RequiresResource && len(draft.ResourceIDs) == 0 {
		return NewPreconditionError("No resource is available for this service at the selected time.")
	}
	// Coach- and staff-initiated bookings are membership-only.
	if (draft.CallerRole == models.RoleCoach || draft.CallerRole == models.RoleStaff) && !elig.Covered() {
		return NewPreconditionError("This client does not have an active membership covering this service.")
	}
	return nil
}

// ConfirmBooking runs the booking-payment saga for one attempt.
//
// Membership-covered and payments-disabled attempts create the booking
// directly in confirmed status and finalize with no payment phases and no
// compensation path. One-off attempts create the booking in pending status,
// authorize and confirm payment, then notify success; any failure after
// creation triggers a compensating cancellation of the pending booking so the
// time slot is released.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, draft models.BookingDraft, billing models.BillingDetails) (*BookingResult, error) {
	pf, err := s.loadPreflight(ctx, draft)
	if err != nil {
		return nil, err
	}
	if err := validateDraft(draft, pf.elig); err != nil {
		return nil, err
	}

	membershipPath := pf.elig.Covered()
	summary := pricing.BuildPaymentSummary(draft.Service, draft.DurationMinutes, pf.cfg.PlatformFeeRate, membershipPath)

	if membershipPath || !pf.cfg.PaymentsEnabled {
		return s.confirmWithoutPayment(ctx, draft, pf, summary)
	}
	return s.confirmWithPayment(ctx, draft, billing, pf, summary)
}

// confirmWithoutPayment handles the membership and no-payment-configured
// paths: the booking is created already confirmed and the saga moves straight
// to finalized. Creation is atomic from the orchestrator's perspective, so
// there is nothing to compensate.
func (s *DefaultBookingService) confirmWithoutPayment(ctx context.Context, draft models.BookingDraft, pf preflight, summary models.PaymentSummary) (*BookingResult, error) {
	b := BuildBookingPayload(draft, pf.elig, models.BookingStatusConfirmed, s.now())
	id, err := s.Repo.Create(ctx, &b)
	if err != nil {
		return nil, newPhaseError(CodeBookingCreation, "We couldn't create your booking. Please try again.", err)
	}
	b.ID = id

	s.Logger.Info("booking finalized without payment",
		zap.String("bookingId", id),
		zap.String("bookingType", b.BookingType),
		zap.String("phase", phaseFinalized.String()),
	)
	return &BookingResult{Booking: b, Summary: summary, Eligibility: pf.elig}, nil
}

// confirmWithPayment handles the one-off path: pending booking, payment
// intent, confirmation, finalization, with compensation on any failure after
// the booking exists.
func (s *DefaultBookingService) confirmWithPayment(ctx context.Context, draft models.BookingDraft, billing models.BillingDetails, pf preflight, summary models.PaymentSummary) (*BookingResult, error) {
	b := BuildBookingPayload(draft, pf.elig, models.BookingStatusPending, s.now())
	bookingID, err := s.Repo.Create(ctx, &b)
	if err != nil {
		// Nothing was created; surface directly with no compensation.
		return nil, newPhaseError(CodeBookingCreation, "We couldn't reserve this time slot. Please try again.", err)
	}
	b.ID = bookingID
	s.Logger.Info("pending booking created",
		zap.String("bookingId", bookingID),
		zap.String("phase", phaseBookingPending.String()),
	)

	paymentIntentID, sagaErr := s.runPaymentPhases(ctx, &b, draft, billing, pf, summary)
	if sagaErr != nil {
		if needsCompensation(sagaErr.Code) {
			s.compensate(ctx, bookingID, sagaErr)
		}
		return nil, sagaErr
	}

	b.Status = models.BookingStatusConfirmed
	b.PaymentIntentID = paymentIntentID
	s.Logger.Info("booking finalized",
		zap.String("bookingId", bookingID),
		zap.String("paymentIntentId", paymentIntentID),
		zap.String("phase", phaseFinalized.String()),
	)
	return &BookingResult{Booking: b, Summary: summary, Eligibility: pf.elig, PaymentIntentID: paymentIntentID}, nil
}

// runPaymentPhases walks the pending booking through payment authorization,
// confirmation and finalization. The returned error is tagged with the phase
// that failed; the caller pattern-matches on it to decide compensation.
func (s *DefaultBookingService) runPaymentPhases(ctx context.Context, b *models.Booking, draft models.BookingDraft, billing models.BillingDetails, pf preflight, summary models.PaymentSummary) (string, *SagaError) {
	s.Logger.Debug("entering payment phase",
		zap.String("bookingId", b.ID),
		zap.String("phase", phasePaymentAuthorizing.String()),
	)
	intent, err := s.Gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
		ClientID:         draft.ClientID,
		ServiceID:        draft.Service.ID,
		BookingID:        b.ID,
		Amount:           summary.Total,
		Description:      draft.Service.Name,
		ConnectAccountID: pf.cfg.ConnectAccountID,
	})
	if err != nil {
		return "", newPhaseError(CodePaymentAuth, "We couldn't start the payment for this booking.", err)
	}
	// Record the payment reference now so the success notification can find
	// the booking even if this process dies before finalization.
	if err := s.Repo.AttachPaymentIntent(ctx, b.ID, intent.PaymentIntentID); err != nil {
		return "", newPhaseError(CodePaymentAuth, "We couldn't start the payment for this booking.", err)
	}

	s.Logger.Debug("entering payment phase",
		zap.String("bookingId", b.ID),
		zap.String("phase", phasePaymentConfirming.String()),
	)
	paymentIntentID, err := s.Gateway.ConfirmPayment(ctx, payment.ConfirmRequest{
		ClientSecret:     intent.ClientSecret,
		Billing:          billing,
		ConnectAccountID: pf.cfg.ConnectAccountID,
	})
	if err != nil {
		return "", newPhaseError(CodePaymentConfirm, "Your payment could not be completed.", err)
	}

	// Safe to retry: the gateway treats repeat notifications for the same
	// payment reference as a no-op.
	if err := s.Gateway.NotifyPaymentSuccess(ctx, paymentIntentID); err != nil {
		return "", newPhaseError(CodeFinalization, "Your payment went through but the booking could not be finalized.", err)
	}
	return paymentIntentID, nil
}

// compensate cancels the pending booking left behind by a failed phase so the
// reserved slot is released. The cancellation is best effort: a failure here
// is logged but never masks the original error and is never retried
// synchronously; the pending-booking sweeper reconciles any orphans.
func (s *DefaultBookingService) compensate(ctx context.Context, bookingID string, cause error) {
	s.Logger.Warn("cancelling pending booking after failure",
		zap.String("bookingId", bookingID),
		zap.String("phase", phaseCancelling.String()),
		zap.NamedError("cause", cause),
	)
	if err := s.Repo.Cancel(ctx, bookingID); err != nil {
		s.Logger.Error("compensating cancellation failed, booking left pending",
			zap.String("bookingId", bookingID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.Logger.Info("pending booking cancelled",
		zap.String("bookingId", bookingID),
		zap.String("phase", phaseFailed.String()),
	)
}

// PreviewSummary computes the price breakdown a client would pay for the
// draft, without creating anything.
func (s *DefaultBookingService) PreviewSummary(ctx context.Context, draft models.BookingDraft) (*SummaryPreview, error) {
	pf, err := s.loadPreflight(ctx, draft)
	if err != nil {
		return nil, err
	}
	summary := pricing.BuildPaymentSummary(draft.Service, draft.DurationMinutes, pf.cfg.PlatformFeeRate, pf.elig.Covered())
	return &SummaryPreview{
		Summary:         summary,
		Eligibility:     pf.elig,
		FeeDescription:  pf.cfg.FeeDescription,
		PaymentsEnabled: pf.cfg.PaymentsEnabled,
	}, nil
}

// CancelBooking performs a user-initiated cancellation of the client's own
// booking.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID, clientID string) error {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	if b.ClientID != clientID {
		return NewPreconditionError("You can only cancel your own bookings.")
	}
	if b.Status == models.BookingStatusCancelled {
		return nil
	}
	if err := s.Repo.Cancel(ctx, bookingID); err != nil {
		return fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}
	s.Logger.Info("booking cancelled by client",
		zap.String("bookingId", bookingID),
		zap.String("clientId", clientID),
	)
	return nil
}
