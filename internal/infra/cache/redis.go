package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shop/internal/shipping"

	"github.com/redis/go-redis/v9"
)

type RedisQuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisQuoteCache(client *redis.Client, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{client: client, ttl: ttl}
}

func (c *RedisQuoteCache) Get(ctx context.Context, cartID, addressID int64) ([]shipping.MethodResult, error) {
	data, err := c.client.Get(ctx, quoteKey(cartID, addressID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var methods []shipping.MethodResult
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("unmarshal quotes failed: %w", err)
	}
	return methods, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, cartID, addressID int64, methods []shipping.MethodResult) error {
	data, err := json.Marshal(methods)
	if err != nil {
		return fmt.Errorf("marshal quotes failed: %w", err)
	}

	if err := c.client.Set(ctx, quoteKey(cartID, addressID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisQuoteCache) DeleteCart(ctx context.Context, cartID int64) error {
	pattern := fmt.Sprintf("checkout:quotes:%d:*", cartID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
	}
	return iter.Err()
}
