package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency claim for order creation: idem:order:create:{key}
const keyIdemOrderCreate = "idem:order:create:"

const defaultClaimTTL = 24 * time.Hour

// Guard fences duplicate order submissions: the first caller to claim a key
// proceeds, later callers with the same key are refused until the claim
// expires or is released.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb, ttl: defaultClaimTTL}
}

func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, keyIdemOrderCreate+key, "1", g.ttl).Result()
}

// Release frees a claim whose unit of work did not commit, so the same key
// can be retried.
func (g *Guard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, keyIdemOrderCreate+key).Err()
}
