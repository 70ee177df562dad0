package payment

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const successKeyPrefix = "payment:success:"

// SuccessRegistry deduplicates payment-success notifications across retries
// using a Redis SETNX guard per payment reference.
type SuccessRegistry struct {
	Cache *redis.Client
	TTL   time.Duration
}

// NewSuccessRegistry creates a registry with the given key lifetime.
func NewSuccessRegistry(cache *redis.Client, ttl time.Duration) *SuccessRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SuccessRegistry{Cache: cache, TTL: ttl}
}

// FirstNotification reports whether this is the first success notification
// seen for the payment reference, claiming the guard if so.
func (r *SuccessRegistry) FirstNotification(ctx context.Context, paymentRef string) (bool, error) {
	return r.Cache.SetNX(ctx, successKeyPrefix+paymentRef, time.Now().UTC().Format(time.RFC3339), r.TTL).Result()
}

// Release drops the guard for a payment reference so a later retry can claim
// it again. Used when the work behind the guard failed.
func (r *SuccessRegistry) Release(ctx context.Context, paymentRef string) {
	r.Cache.Del(ctx, successKeyPrefix+paymentRef)
}
