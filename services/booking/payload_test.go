package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachbook/models"
	"coachbook/services/membership"
)

func payloadDraft() models.BookingDraft {
	return models.BookingDraft{
		ClientID:   "client-1",
		CallerRole: models.RoleClient,
		LocationID: "loc-1",
		Service: models.Service{
			ID:              "svc-1",
			Price:           100,
			DurationMinutes: 60,
		},
		StartTime: time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildBookingPayloadDeterministic(t *testing.T) {
	draft := payloadDraft()
	elig := membership.Eligibility{Outcome: membership.OutcomeNoMembership}
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	first := BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	second := BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	require.Equal(t, first, second, "identical inputs must produce identical payloads")
}

func TestBuildBookingPayloadBookableReference(t *testing.T) {
	draft := payloadDraft()
	elig := membership.Eligibility{Outcome: membership.OutcomeNoMembership}
	now := time.Now().UTC()

	// No coach chosen: the bookable falls back to the service itself.
	b := BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	assert.Equal(t, models.BookableTypeService, b.BookableType)
	assert.Equal(t, "svc-1", b.BookableID)

	draft.CoachID = "coach-7"
	b = BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	assert.Equal(t, models.BookableTypeCoach, b.BookableType)
	assert.Equal(t, "coach-7", b.BookableID)
}

func TestBuildBookingPayloadOptionalFields(t *testing.T) {
	draft := payloadDraft()
	elig := membership.Eligibility{Outcome: membership.OutcomeNoMembership}
	now := time.Now().UTC()

	b := BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	assert.Empty(t, b.ResourceIDs)
	assert.Zero(t, b.DurationMinutes, "duration only appears for variable-duration services")
	assert.Empty(t, b.SubscriptionID)
	assert.Empty(t, b.PlanServiceID)

	// Duration is ignored unless the service is variable-duration.
	draft.DurationMinutes = 90
	b = BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	assert.Zero(t, b.DurationMinutes)

	draft.Service.IsVariableDuration = true
	draft.ResourceIDs = []string{"res-1"}
	b = BuildBookingPayload(draft, elig, models.BookingStatusPending, now)
	assert.Equal(t, 90, b.DurationMinutes)
	assert.Equal(t, []string{"res-1"}, b.ResourceIDs)
}

func TestBuildBookingPayloadMembershipLinkage(t *testing.T) {
	draft := payloadDraft()
	now := time.Now().UTC()

	b := BuildBookingPayload(draft, coveredEligibility(), models.BookingStatusConfirmed, now)
	assert.Equal(t, models.BookingTypeMembership, b.BookingType)
	assert.Equal(t, "sub-1", b.SubscriptionID)
	assert.Equal(t, "ps-1", b.PlanServiceID)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	// Every non-covered outcome routes to one-off.
	for _, outcome := range []membership.Outcome{
		membership.OutcomeNoMembership,
		membership.OutcomePaused,
		membership.OutcomeNotCovered,
	} {
		b = BuildBookingPayload(draft, membership.Eligibility{Outcome: outcome}, models.BookingStatusPending, now)
		assert.Equal(t, models.BookingTypeOneOff, b.BookingType, "outcome %s", outcome)
		assert.Empty(t, b.SubscriptionID)
	}
}
