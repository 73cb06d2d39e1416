package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// RedisCartStore keeps one JSON document per buyer. Writers follow a
// re-fetch-and-diff discipline (the cart reconciler and the storefront may
// touch the same cart concurrently), so Save is a plain overwrite of a value
// the caller just derived from a fresh read.
type RedisCartStore struct {
	rdb *redis.Client
}

func NewRedisCartStore(rdb *redis.Client) *RedisCartStore {
	return &RedisCartStore{rdb: rdb}
}

func cartKey(buyerID string) string { return "cart:" + buyerID }

func (s *RedisCartStore) FindByBuyer(ctx context.Context, buyerID string) (*domain.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(buyerID)).Bytes()
	if err == redis.Nil {
		return nil, nil // no cart is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("cart get: %w", err)
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("cart decode: %w", err)
	}
	return &c, nil
}

func (s *RedisCartStore) Save(ctx context.Context, c *domain.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart encode: %w", err)
	}
	return s.rdb.Set(ctx, cartKey(c.BuyerID), raw, 0).Err()
}

var _ usecase.CartStore = (*RedisCartStore)(nil)
