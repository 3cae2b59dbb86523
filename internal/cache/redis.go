package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightpay/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// AcquireOrderLock takes a short-TTL lock around one order's payment
// verification. It is a fast path only: the conditional status update in
// the order store is what actually guarantees a single transition.
func (c *RedisCache) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, orderLockKey(orderID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseOrderLock(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, orderLockKey(orderID)).Err()
}

// AcquireSweepLock keeps overlapping sweep runs (worker ticker vs. cron
// endpoint) from scanning the same batch at the same time. Sweeps are
// idempotent either way; this only saves duplicate work.
func (c *RedisCache) AcquireSweepLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, sweepLockKey(name), "running", ttl).Result()
}

func (c *RedisCache) ReleaseSweepLock(ctx context.Context, name string) error {
	return c.client.Del(ctx, sweepLockKey(name)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func orderLockKey(orderID string) string {
	return fmt.Sprintf("lock:order:%s", orderID)
}

func sweepLockKey(name string) string {
	return fmt.Sprintf("lock:sweep:%s", name)
}
