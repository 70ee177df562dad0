package models

import "time"

// Subscription statuses as reported by the billing processor.
const (
	SubscriptionStatusActive = "active"
	// Both spellings occur in processor payloads; treat them identically.
	SubscriptionStatusCanceled  = "canceled"
	SubscriptionStatusCancelled = "cancelled"
)

// MembershipPlan is the plan a client subscribed to, with its service allotments.
type MembershipPlan struct {
	ID       string        `bson:"id" json:"id"`
	Name     string        `bson:"name" json:"name"`
	Services []PlanService `bson:"services" json:"services"`
}

// PlanService is the allotment a membership plan grants for one service per billing cycle.
type PlanService struct {
	ID                string `bson:"id" json:"id"`
	MembershipPlanID  string `bson:"membership_plan_id" json:"membershipPlanId"`
	ServiceID         string `bson:"service_id" json:"serviceId"`
	Quantity          int    `bson:"quantity" json:"quantity"`
	UsedQuantity      int    `bson:"used_quantity" json:"usedQuantity"`
	RemainingQuantity *int   `bson:"remaining_quantity" json:"remainingQuantity"` // nil means unlimited
}

// MembershipSubscription is a client's subscription to a membership plan.
type MembershipSubscription struct {
	ID           string         `bson:"id" json:"id"`
	ClientID     string         `bson:"client_id" json:"clientId"`
	Plan         MembershipPlan `bson:"plan" json:"plan"`
	StripeStatus string         `bson:"stripe_status" json:"stripeStatus"`
	IsPaused     bool           `bson:"is_paused" json:"isPaused"`
	PauseStartAt *time.Time     `bson:"pause_start_at,omitempty" json:"pauseStartAt,omitempty"`
	PauseEndAt   *time.Time     `bson:"pause_end_at,omitempty" json:"pauseEndAt,omitempty"`
	EndDate      *time.Time     `bson:"end_date,omitempty" json:"endDate,omitempty"`
	CreatedAt    time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updatedAt"`
}

// ActiveForUsage reports whether the subscription still grants benefits at the
// given instant. A cancelled subscription keeps its benefits until its end date.
func (s MembershipSubscription) ActiveForUsage(now time.Time) bool {
	switch s.StripeStatus {
	case SubscriptionStatusActive:
		return true
	case SubscriptionStatusCanceled, SubscriptionStatusCancelled:
		return s.EndDate == nil || s.EndDate.After(now)
	default:
		return false
	}
}

// PausedAt reports whether the subscription's pause window covers the given
// instant. Open-ended bounds are treated as unbounded on that side.
func (s MembershipSubscription) PausedAt(now time.Time) bool {
	if !s.IsPaused {
		return false
	}
	if s.PauseStartAt != nil && now.Before(*s.PauseStartAt) {
		return false
	}
	if s.PauseEndAt != nil && !now.Before(*s.PauseEndAt) {
		return false
	}
	return true
}

// PlanServiceFor returns the plan's allotment for the given service, if any.
func (s MembershipSubscription) PlanServiceFor(serviceID string) (PlanService, bool) {
	for _, ps := range s.Plan.Services {
		if ps.ServiceID == serviceID {
			return ps, true
		}
	}
	return PlanService{}, false
}
