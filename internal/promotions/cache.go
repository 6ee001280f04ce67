package promotions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DiscountCache keeps per-product active discount sets in Redis for a short
// TTL. A nil cache or an unreachable Redis degrades to direct repository
// reads; the resolver never fails because of the cache.
type DiscountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDiscountCache constructs DiscountCache.
func NewDiscountCache(client *redis.Client, ttl time.Duration) *DiscountCache {
	return &DiscountCache{client: client, ttl: ttl}
}

func cacheKey(productID int64) string {
	return fmt.Sprintf("promo:product:%d", productID)
}

// Get returns the cached discount set and whether it was present.
func (c *DiscountCache) Get(ctx context.Context, productID int64) ([]ProductDiscount, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, cacheKey(productID)).Bytes()
	if err != nil {
		return nil, false
	}
	var discounts []ProductDiscount
	if err := json.Unmarshal(payload, &discounts); err != nil {
		return nil, false
	}
	return discounts, true
}

// Set stores the discount set. An empty set is cached too, so products
// without promotions do not hammer the database.
func (c *DiscountCache) Set(ctx context.Context, productID int64, discounts []ProductDiscount) {
	if c == nil || c.client == nil {
		return
	}
	if discounts == nil {
		discounts = []ProductDiscount{}
	}
	payload, err := json.Marshal(discounts)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(productID), payload, c.ttl)
}

// Invalidate drops the cached set for a product, used when promotion rows
// change ahead of TTL expiry.
func (c *DiscountCache) Invalidate(ctx context.Context, productID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, cacheKey(productID))
}
