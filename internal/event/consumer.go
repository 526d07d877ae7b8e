package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/utafrali/communityshop/pkg/kafka"
)

// CacheInvalidator removes a product from the detail cache.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// NewCacheInvalidationHandler returns a Kafka handler that evicts the product
// named by each product event. It runs after the write path's own eviction,
// so an entry repopulated while the write was in flight does not outlive it.
// Redelivered events are skipped by event ID.
func NewCacheInvalidationHandler(cache CacheInvalidator, dedupTTL time.Duration, logger *slog.Logger) pkgkafka.Handler {
	evict := func(ctx context.Context, e *pkgkafka.Event) error {
		if e.AggregateType != AggregateTypeProduct || e.AggregateID == "" {
			return nil
		}
		if err := cache.Invalidate(ctx, e.AggregateID); err != nil {
			return fmt.Errorf("invalidate product %s: %w", e.AggregateID, err)
		}
		logger.DebugContext(ctx, "product cache entry evicted",
			slog.String("product_id", e.AggregateID),
			slog.String("event_type", e.EventType),
		)
		return nil
	}

	store := pkgkafka.NewMemoryIdempotencyStore(dedupTTL)
	return pkgkafka.Deduplicate(store, evict, logger)
}
