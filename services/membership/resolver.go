package membership

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultResolver implements Resolver over a membership repository.
type DefaultResolver struct {
	Repo   Repository
	Logger *zap.Logger
}

// NewDefaultResolver creates a resolver backed by the given repository.
func NewDefaultResolver(repo Repository, logger *zap.Logger) *DefaultResolver {
	return &DefaultResolver{Repo: repo, Logger: logger}
}

// ResolveEligibility classifies the client's membership standing for the
// requested service.
//
// The status and pause-window checks run strictly before any usage-coverage
// check. A paused membership must never resolve as Covered, even with uses
// remaining: benefits are suspended for the whole pause window. Reordering
// these checks would let a paused member book for free.
func (r *DefaultResolver) ResolveEligibility(ctx context.Context, clientID, serviceID string, now time.Time) (Eligibility, error) {
	sub, err := r.Repo.GetCurrentMembership(ctx, clientID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("failed to fetch membership for client %s: %w", clientID, err)
	}

	if sub == nil || !sub.ActiveForUsage(now) {
		return Eligibility{Outcome: OutcomeNoMembership}, nil
	}

	if sub.PausedAt(now) {
		r.Logger.Debug("membership paused, falling back to one-off payment",
			zap.String("clientId", clientID),
			zap.String("subscriptionId", sub.ID),
		)
		return Eligibility{Outcome: OutcomePaused}, nil
	}

	ps, ok := sub.PlanServiceFor(serviceID)
	if !ok {
		return Eligibility{Outcome: OutcomeNotCovered}, nil
	}

	// nil remaining means unlimited. Zero means exhausted; negative values only
	// occur on backend data errors and are treated as exhausted as well.
	if ps.RemainingQuantity != nil && *ps.RemainingQuantity <= 0 {
		return Eligibility{Outcome: OutcomeNotCovered}, nil
	}

	return Eligibility{
		Outcome:        OutcomeCovered,
		SubscriptionID: sub.ID,
		PlanServiceID:  ps.ID,
		Remaining:      ps.RemainingQuantity,
	}, nil
}
