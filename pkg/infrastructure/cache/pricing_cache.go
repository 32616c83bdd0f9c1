package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/domain/entities"
	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

const DefaultPricingTTL = 15 * time.Minute

// PricingKey is the redis key of the stored price of an (item, scenario) pair
func PricingKey(itemID, scenarioID int64) string {
	return fmt.Sprintf("pricing:%d:%d", itemID, scenarioID)
}

// PricingCache keeps calculated prices in redis. A cache with a nil client misses on every read
// and ignores writes, so callers never need to check whether redis is configured.
type PricingCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewPricingCache(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *PricingCache {
	if ttl <= 0 {
		ttl = DefaultPricingTTL
	}
	return &PricingCache{rdb: rdb, ttl: ttl, logger: logging.OrNop(logger)}
}

// NewClient builds the redis client used by the cache
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Get returns the cached price; ok is false on a miss
func (c *PricingCache) Get(ctx context.Context, itemID, scenarioID int64) (*entities.ItemPricing, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}

	raw, err := c.rdb.Get(ctx, PricingKey(itemID, scenarioID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read pricing cache: %w", err)
	}

	var pricing entities.ItemPricing
	if err := json.Unmarshal(raw, &pricing); err != nil {
		c.logger.Warn("dropping corrupt pricing cache entry", zap.String("key", PricingKey(itemID, scenarioID)), zap.Error(err))
		c.rdb.Del(ctx, PricingKey(itemID, scenarioID))
		return nil, false, nil
	}
	return &pricing, true, nil
}

// Set stores the price under its (item, scenario) key
func (c *PricingCache) Set(ctx context.Context, pricing *entities.ItemPricing) error {
	if c == nil || c.rdb == nil {
		return nil
	}

	raw, err := json.Marshal(pricing)
	if err != nil {
		return fmt.Errorf("encode pricing: %w", err)
	}
	if err := c.rdb.Set(ctx, PricingKey(pricing.ItemID, pricing.PricingScenarioID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write pricing cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached price of the pair
func (c *PricingCache) Invalidate(ctx context.Context, itemID, scenarioID int64) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, PricingKey(itemID, scenarioID)).Err()
}
