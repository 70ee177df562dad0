package tenantRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coachbook/config"
	"coachbook/database"
	"coachbook/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const configCacheKey = "tenant:ecommerce_config"

// MongoTenantRepo reads the tenant's ecommerce configuration document,
// caching it briefly in Redis. It implements the payment service's
// ConfigSource interface.
type MongoTenantRepo struct {
	coll     *mongo.Collection
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewMongoTenantRepo creates a tenant-config repository over the tenant_config
// collection with the given cache client.
func NewMongoTenantRepo(cache *redis.Client) *MongoTenantRepo {
	return &MongoTenantRepo{
		coll:     database.Collection("tenant_config"),
		cache:    cache,
		cacheTTL: time.Minute,
	}
}

// GetEcommerceConfig returns the tenant's payment-processor configuration.
// When the tenant has no config document, payments are reported as disabled
// rather than failing the caller.
func (r *MongoTenantRepo) GetEcommerceConfig(ctx context.Context) (models.EcommerceConfig, error) {
	if cached, err := r.cache.Get(ctx, configCacheKey).Result(); err == nil {
		var cfg models.EcommerceConfig
		if jsonErr := json.Unmarshal([]byte(cached), &cfg); jsonErr == nil {
			return cfg, nil
		}
	}

	var cfg models.EcommerceConfig
	err := r.coll.FindOne(ctx, bson.M{}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.EcommerceConfig{
			PlatformFeeRate: config.AppConfig.PlatformFeeRate,
			PaymentsEnabled: false,
		}, nil
	}
	if err != nil {
		return models.EcommerceConfig{}, fmt.Errorf("failed to fetch ecommerce config: %w", err)
	}

	if data, jsonErr := json.Marshal(cfg); jsonErr == nil {
		r.cache.Set(ctx, configCacheKey, data, r.cacheTTL)
	}
	return cfg, nil
}
