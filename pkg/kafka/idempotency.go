package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IdempotencyStore remembers which event IDs were handled successfully.
type IdempotencyStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// MemoryIdempotencyStore keeps event IDs in process memory for ttl.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	expires map[string]time.Time
	marks   int
}

// sweepEvery is how many Marks pass between scans for expired IDs.
const sweepEvery = 256

// NewMemoryIdempotencyStore creates a store whose entries live for ttl.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		expires: make(map[string]time.Time),
	}
}

// Seen reports whether eventID was marked and has not expired.
func (s *MemoryIdempotencyStore) Seen(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[eventID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.expires, eventID)
		return false, nil
	}
	return true, nil
}

// Mark records eventID as handled.
func (s *MemoryIdempotencyStore) Mark(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expires[eventID] = now.Add(s.ttl)

	s.marks++
	if s.marks%sweepEvery == 0 {
		for id, exp := range s.expires {
			if !now.Before(exp) {
				delete(s.expires, id)
			}
		}
	}
	return nil
}

// Len returns the number of tracked IDs, expired ones included.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

// Deduplicate skips events whose ID store has already seen. An event is
// marked only after next succeeds, so failed attempts are redelivered. A
// failed lookup lets the event through.
func Deduplicate(store IdempotencyStore, next Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, e *Event) error {
		if e.EventID == "" {
			return next(ctx, e)
		}

		seen, err := store.Seen(ctx, e.EventID)
		if err != nil {
			logger.WarnContext(ctx, "idempotency lookup failed",
				slog.String("event_id", e.EventID),
				slog.String("error", err.Error()),
			)
		}
		if seen {
			logger.DebugContext(ctx, "duplicate event skipped",
				slog.String("event_id", e.EventID),
				slog.String("event_type", e.EventType),
			)
			return nil
		}

		if err := next(ctx, e); err != nil {
			return err
		}
		if err := store.Mark(ctx, e.EventID); err != nil {
			logger.WarnContext(ctx, "idempotency mark failed",
				slog.String("event_id", e.EventID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
}
