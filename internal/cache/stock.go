// Package cache keeps a short-lived copy of derived stock for dashboards.
// Nothing that decides whether stock may go negative reads from it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "inv:stock:"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

type StockCache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// NewStockCache connects to url and verifies the server answers.
func NewStockCache(ctx context.Context, url string, ttl time.Duration) (*StockCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &StockCache{store: raw, raw: raw, ttl: ttl}, nil
}

func stockKey(productID uuid.UUID) string {
	return stockKeyPrefix + productID.String()
}

// Get reports a cached value; found is false on a miss.
func (c *StockCache) Get(ctx context.Context, productID uuid.UUID) (stock int, found bool, err error) {
	raw, err := c.store.Get(ctx, stockKey(productID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	stock, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt stock cache entry: %w", err)
	}
	return stock, true, nil
}

func (c *StockCache) Set(ctx context.Context, productID uuid.UUID, stock int) error {
	return c.store.Set(ctx, stockKey(productID), stock, c.ttl).Err()
}

func (c *StockCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = stockKey(id)
	}
	return c.store.Del(ctx, keys...).Err()
}

// Ping reports whether Redis answers; /healthz calls it.
func (c *StockCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

func (c *StockCache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
