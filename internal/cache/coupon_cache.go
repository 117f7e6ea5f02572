package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhishekdk62/cineora-ledger/internal/model"
)

// CouponCache is a short-TTL read cache in front of coupon validation.
// Redemption never trusts it: the guarded UPDATE in Postgres is the source of
// truth, and every write path invalidates the cached copy.
type CouponCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCouponCache creates a CouponCache with the given TTL.
func NewCouponCache(client *redis.Client, ttl time.Duration) *CouponCache {
	return &CouponCache{client: client, ttl: ttl}
}

func key(code string) string {
	return "coupon:" + code
}

// Get returns the cached coupon for a code, or nil on a miss.
func (c *CouponCache) Get(ctx context.Context, code string) (*model.Coupon, error) {
	val, err := c.client.Get(ctx, key(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", code, err)
	}

	var coupon model.Coupon
	if err := json.Unmarshal([]byte(val), &coupon); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", code, err)
	}
	return &coupon, nil
}

// Set stores a coupon under its code with the configured TTL.
func (c *CouponCache) Set(ctx context.Context, coupon *model.Coupon) error {
	data, err := json.Marshal(coupon)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", coupon.Code, err)
	}
	if err := c.client.Set(ctx, key(coupon.Code), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", coupon.Code, err)
	}
	return nil
}

// Invalidate drops the cached copy for a code.
func (c *CouponCache) Invalidate(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, key(code)).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", code, err)
	}
	return nil
}
