package booking

import (
	"time"

	"coachbook/models"
	"coachbook/services/membership"
)

// BuildBookingPayload maps a draft and its resolved eligibility onto the
// booking record to persist. Pure and deterministic: identical inputs always
// produce identical payloads, which keeps the creation step safe to retry.
//
// Field rules:
//   - booking_type follows the eligibility outcome (membership only on Covered)
//   - the bookable reference points at the coach when one was chosen,
//     otherwise at the service itself
//   - resource_ids appear only when a resource was auto-selected
//   - duration_minutes appears only for variable-duration services with a
//     chosen duration
//   - membership linkage appears only on the membership path
func BuildBookingPayload(draft models.BookingDraft, elig membership.Eligibility, status string, now time.Time) models.Booking {
	b := models.Booking{
		ClientID:     draft.ClientID,
		BookingType:  models.BookingTypeOneOff,
		LocationID:   draft.LocationID,
		ServiceIDs:   []string{draft.Service.ID},
		BookableType: models.BookableTypeService,
		BookableID:   draft.Service.ID,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
		Status:       status,
		CreatedAt:    now,
	}

	if draft.CoachID != "" {
		b.BookableType = models.BookableTypeCoach
		b.BookableID = draft.CoachID
	}
	if len(draft.ResourceIDs) > 0 {
		b.ResourceIDs = draft.ResourceIDs
	}
	if draft.Service.IsVariableDuration && draft.DurationMinutes > 0 {
		b.DurationMinutes = draft.DurationMinutes
	}
	if elig.Covered() {
		b.BookingType = models.BookingTypeMembership
		b.SubscriptionID = elig.SubscriptionID
		b.PlanServiceID = elig.PlanServiceID
	}
	return b
}
