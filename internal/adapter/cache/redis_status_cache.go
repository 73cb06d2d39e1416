package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// RedisStatusCache is a best-effort write-through of the latest order status.
// MySQL stays the system of record; a missed write here costs a DB read.
type RedisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatusCache) SetOrderStatus(ctx context.Context, orderNumber, status string) error {
	return c.rdb.Set(ctx, "order:status:"+orderNumber, status, c.ttl).Err()
}

func (c *RedisStatusCache) GetOrderStatus(ctx context.Context, orderNumber string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, "order:status:"+orderNumber).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.StatusCache = (*RedisStatusCache)(nil)
