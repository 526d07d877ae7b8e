// Package redis caches product detail responses in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/utafrali/communityshop/internal/domain"
)

const keyPrefix = "product:"

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "communityshop_product_cache_requests_total",
		Help: "Product cache lookups by result (hit, miss, error)",
	},
	[]string{"result"},
)

// Loader fetches a product from the source of truth on a cache miss.
type Loader = func(ctx context.Context) (*domain.Product, error)

// ProductCache is a read-through cache for product details. Concurrent
// misses for the same id share one load.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewProductCache creates a Redis-backed product cache.
func NewProductCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ProductCache {
	return &ProductCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached product, or nil when the key is absent.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get product: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal cached product: %w", err)
	}

	return &p, nil
}

// Set stores a product with the configured TTL.
func (c *ProductCache) Set(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+p.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}

// Invalidate removes a product from the cache. Removing an absent key is not an error.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del product: %w", err)
	}
	return nil
}

// GetOrLoad serves id from the cache, falling back to load on a miss. Cache
// failures are logged and never fail the read.
func (c *ProductCache) GetOrLoad(ctx context.Context, id string, load Loader) (*domain.Product, error) {
	p, err := c.Get(ctx, id)
	switch {
	case err != nil:
		cacheRequests.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "product cache read failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	case p != nil:
		cacheRequests.WithLabelValues("hit").Inc()
		return p, nil
	default:
		cacheRequests.WithLabelValues("miss").Inc()
	}

	// The shared load outlives the caller that started it; other waiters
	// must not see that caller's cancellation.
	v, err, _ := c.group.Do(id, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		p, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(loadCtx, p); err != nil {
			c.logger.WarnContext(loadCtx, "product cache write failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

// Ping checks Redis connectivity.
func (c *ProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
