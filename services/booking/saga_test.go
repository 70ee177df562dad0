package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coachbook/models"
	"coachbook/services/membership"
	"coachbook/services/payment"
)

// --- Fakes for the saga's collaborators ---

type fakeBookingRepo struct {
	created   []models.Booking
	cancelled []string
	attached  map[string]string
	createErr error
	cancelErr error
	attachErr error
	nextID    int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{attached: make(map[string]string)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	f.created = append(f.created, *b)
	return b.ID, nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeBookingRepo) AttachPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached[id] = paymentIntentID
	return nil
}

func (f *fakeBookingRepo) MarkPaid(ctx context.Context, paymentIntentID string) error { return nil }

func (f *fakeBookingRepo) FindStalePending(ctx context.Context, olderThan time.Time) ([]models.Booking, error) {
	return nil, nil
}

type fakeGateway struct {
	intents    []payment.IntentRequest
	confirms   []payment.ConfirmRequest
	notified   []string
	createErr  error
	confirmErr error
	notifyErr  error
}

func (f *fakeGateway) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.intents = append(f.intents, req)
	return &payment.IntentResult{PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret_abc"}, nil
}

func (f *fakeGateway) ConfirmPayment(ctx context.Context, req payment.ConfirmRequest) (string, error) {
	if f.confirmErr != nil {
		return "", f.confirmErr
	}
	f.confirms = append(f.confirms, req)
	return "pi_1", nil
}

func (f *fakeGateway) NotifyPaymentSuccess(ctx context.Context, paymentIntentID string) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, paymentIntentID)
	return nil
}

type fakeConfigSource struct {
	cfg models.EcommerceConfig
	err error
}

func (f *fakeConfigSource) GetEcommerceConfig(ctx context.Context) (models.EcommerceConfig, error) {
	return f.cfg, f.err
}

type fakeResolver struct {
	elig membership.Eligibility
	err  error
}

func (f *fakeResolver) ResolveEligibility(ctx context.Context, clientID, serviceID string, now time.Time) (membership.Eligibility, error) {
	return f.elig, f.err
}

// --- Fixtures ---

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func coveredEligibility() membership.Eligibility {
	remaining := 3
	return membership.Eligibility{
		Outcome:        membership.OutcomeCovered,
		SubscriptionID: "sub-1",
		PlanServiceID:  "ps-1",
		Remaining:      &remaining,
	}
}

func paymentsEnabledConfig() models.EcommerceConfig {
	return models.EcommerceConfig{
		PlatformFeeRate:  0.035,
		PaymentsEnabled:  true,
		ConnectAccountID: "acct_123",
	}
}

func testDraft() models.BookingDraft {
	return models.BookingDraft{
		ClientID:   "client-1",
		CallerRole: models.RoleClient,
		LocationID: "loc-1",
		Service: models.Service{
			ID:              "svc-1",
			Name:            "1:1 Coaching Session",
			Price:           100,
			DurationMinutes: 60,
		},
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(25 * time.Hour),
	}
}

func newService(repo *fakeBookingRepo, gw *fakeGateway, elig membership.Eligibility, cfg models.EcommerceConfig) *DefaultBookingService {
	return &DefaultBookingService{
		Repo:       repo,
		Membership: &fakeResolver{elig: elig},
		Gateway:    gw,
		Config:     &fakeConfigSource{cfg: cfg},
		Logger:     zap.NewNop(),
		Clock:      func() time.Time { return testNow },
	}
}

// --- Scenarios ---

func TestConfirmBookingMembershipPathSkipsPayment(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{}
	svc := newService(repo, gw, coveredEligibility(), paymentsEnabledConfig())

	result, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{})
	require.NoError(t, err)

	require.Len(t, repo.created, 1, "booking must be created exactly once")
	created := repo.created[0]
	assert.Equal(t, models.BookingStatusConfirmed, created.Status)
	assert.Equal(t, models.BookingTypeMembership, created.BookingType)
	assert.Equal(t, "sub-1", created.SubscriptionID)
	assert.Equal(t, "ps-1", created.PlanServiceID)

	assert.Empty(t, gw.intents, "no payment intent may be requested on the membership path")
	assert.Empty(t, gw.confirms)
	assert.Empty(t, repo.cancelled)

	assert.True(t, result.Summary.Total.IsZero())
	assert.True(t, result.Summary.IsMembershipBooking)
}

func TestConfirmBookingOneOffHappyPath(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	result, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{PaymentMethodID: "pm_1"})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, models.BookingStatusPending, created.Status, "one-off bookings start pending")
	assert.Equal(t, models.BookingTypeOneOff, created.BookingType)
	assert.Empty(t, created.SubscriptionID)

	require.Len(t, gw.intents, 1)
	assert.Equal(t, "103.50", gw.intents[0].Amount.StringFixed(2), "intent amount is subtotal plus platform fee")
	assert.Equal(t, "acct_123", gw.intents[0].ConnectAccountID)
	assert.Equal(t, created.ID, gw.intents[0].BookingID)

	require.Len(t, gw.confirms, 1)
	assert.Equal(t, "pm_1", gw.confirms[0].Billing.PaymentMethodID)

	require.Len(t, gw.notified, 1, "finalization must be notified exactly once")
	assert.Equal(t, "pi_1", gw.notified[0])

	assert.Equal(t, "pi_1", repo.attached[created.ID])
	assert.Empty(t, repo.cancelled, "no compensation on success")
	assert.Equal(t, models.BookingStatusConfirmed, result.Booking.Status)
	assert.Equal(t, "pi_1", result.PaymentIntentID)
}

func TestConfirmBookingPaymentConfirmationFailureCompensates(t *testing.T) {
	repo := newFakeBookingRepo()
	cardErr := errors.New("card_declined")
	gw := &fakeGateway{confirmErr: cardErr}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	_, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{PaymentMethodID: "pm_1"})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodePaymentConfirm, se.Code)
	assert.ErrorIs(t, err, cardErr)

	require.Len(t, repo.created, 1)
	require.Len(t, repo.cancelled, 1, "exactly one compensating cancellation")
	assert.Equal(t, repo.created[0].ID, repo.cancelled[0])
	assert.Empty(t, gw.notified, "no finalization after a failed confirmation")
}

func TestConfirmBookingCompensationFailureNeverMasksPaymentError(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.cancelErr = errors.New("booking store unavailable")
	cardErr := errors.New("card_declined")
	gw := &fakeGateway{confirmErr: cardErr}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	_, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{PaymentMethodID: "pm_1"})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodePaymentConfirm, se.Code, "the surfaced error is the payment error, not the cancellation error")
	assert.ErrorIs(t, err, cardErr)
	assert.NotContains(t, err.Error(), "booking store unavailable")
}

func TestConfirmBookingAuthorizationFailureCompensates(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{createErr: errors.New("processor unreachable")}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	_, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{PaymentMethodID: "pm_1"})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodePaymentAuth, se.Code)
	require.Len(t, repo.cancelled, 1)
}

func TestConfirmBookingFinalizationFailureCompensates(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{notifyErr: errors.New("notify timeout")}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	_, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{PaymentMethodID: "pm_1"})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeFinalization, se.Code)
	require.Len(t, repo.cancelled, 1)
}

func TestConfirmBookingCoachRequiresCoverage(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNotCovered}, paymentsEnabledConfig())

	draft := testDraft()
	draft.CallerRole = models.RoleCoach

	_, err := svc.ConfirmBooking(context.Background(), draft, models.BillingDetails{})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodePrecondition, se.Code)

	assert.Empty(t, repo.created, "rejected before any side effect")
	assert.Empty(t, repo.cancelled, "nothing to compensate when nothing was created")
	assert.Empty(t, gw.intents)
}

func TestConfirmBookingMissingResourcePrecondition(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newService(repo, &fakeGateway{}, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	draft := testDraft()
	draft.Service.RequiresResource = true

	_, err := svc.ConfirmBooking(context.Background(), draft, models.BillingDetails{})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodePrecondition, se.Code)
	assert.Empty(t, repo.created)
}

func TestConfirmBookingPaymentsDisabledConfirmsDirectly(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{}
	cfg := paymentsEnabledConfig()
	cfg.PaymentsEnabled = false
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, cfg)

	result, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, models.BookingStatusConfirmed, repo.created[0].Status)
	assert.Equal(t, models.BookingTypeOneOff, repo.created[0].BookingType)
	assert.Empty(t, gw.intents, "no payment phases when the tenant has no processor")
	assert.Equal(t, models.BookingStatusConfirmed, result.Booking.Status)
}

func TestConfirmBookingPausedMembershipFallsBackToOneOff(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{}
	svc := newService(repo, gw, membership.Eligibility{Outcome: membership.OutcomePaused}, paymentsEnabledConfig())

	_, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{PaymentMethodID: "pm_1"})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, models.BookingTypeOneOff, repo.created[0].BookingType)
	require.Len(t, gw.intents, 1, "paused members pay one-off")
}

func TestConfirmBookingCreationFailureNeedsNoCompensation(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.createErr = errors.New("insert failed")
	svc := newService(repo, &fakeGateway{}, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	_, err := svc.ConfirmBooking(context.Background(), testDraft(), models.BillingDetails{})
	require.Error(t, err)

	var se *SagaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeBookingCreation, se.Code)
	assert.Empty(t, repo.cancelled)
}

func TestPreviewSummaryHasNoSideEffects(t *testing.T) {
	repo := newFakeBookingRepo()
	gw := &fakeGateway{}
	svc := newService(repo, gw, coveredEligibility(), paymentsEnabledConfig())

	preview, err := svc.PreviewSummary(context.Background(), testDraft())
	require.NoError(t, err)

	assert.True(t, preview.Summary.Total.IsZero())
	assert.True(t, preview.Eligibility.Covered())
	assert.Empty(t, repo.created)
	assert.Empty(t, gw.intents)
}

func TestCancelBookingOwnershipEnforced(t *testing.T) {
	repo := newFakeBookingRepo()
	svc := newService(repo, &fakeGateway{}, membership.Eligibility{Outcome: membership.OutcomeNoMembership}, paymentsEnabledConfig())

	b := models.Booking{ClientID: "client-1", Status: models.BookingStatusConfirmed}
	id, err := repo.Create(context.Background(), &b)
	require.NoError(t, err)

	err = svc.CancelBooking(context.Background(), id, "someone-else")
	require.Error(t, err)
	assert.Empty(t, repo.cancelled)

	require.NoError(t, svc.CancelBooking(context.Background(), id, "client-1"))
	assert.Equal(t, []string{id}, repo.cancelled)
}

func TestUserMessagePrefersSagaMessage(t *testing.T) {
	err := newPhaseError(CodePaymentConfirm, "Your payment could not be completed.", errors.New("card_declined"))
	assert.Equal(t, "Your payment could not be completed.", UserMessage(err))
	assert.Empty(t, UserMessage(nil))
}
