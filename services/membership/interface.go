package membership

import (
	"context"
	"time"

	"coachbook/models"
)

// Outcome classifies a client's membership standing for one service.
type Outcome string

const (
	// OutcomeNoMembership means the client has no membership record, or the
	// record no longer grants benefits.
	OutcomeNoMembership Outcome = "no_membership"
	// OutcomePaused means the membership is active by status but benefits are
	// suspended by the current pause window.
	OutcomePaused Outcome = "paused"
	// OutcomeCovered means the membership covers this service with uses
	// remaining; the only outcome that selects the membership booking path.
	OutcomeCovered Outcome = "covered"
	// OutcomeNotCovered means the membership is active and unpaused but the
	// plan has no usable allotment for this service.
	OutcomeNotCovered Outcome = "not_covered"
)

// Eligibility is the result of resolving a client's coverage for a service.
// SubscriptionID and PlanServiceID are populated only when Covered.
type Eligibility struct {
	Outcome        Outcome `json:"outcome"`
	SubscriptionID string  `json:"subscriptionId,omitempty"`
	PlanServiceID  string  `json:"planServiceId,omitempty"`
	Remaining      *int    `json:"remaining,omitempty"` // nil means unlimited
}

// Covered reports whether the membership booking path applies.
func (e Eligibility) Covered() bool {
	return e.Outcome == OutcomeCovered
}

// Repository provides the client's current membership subscription.
type Repository interface {
	GetCurrentMembership(ctx context.Context, clientID string) (*models.MembershipSubscription, error)
}

// Resolver determines whether a booking is covered by a membership.
type Resolver interface {
	ResolveEligibility(ctx context.Context, clientID, serviceID string, now time.Time) (Eligibility, error)
}
