package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
)

// IdempotencyStore remembers which event ids were already handled.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	Contains(ctx context.Context, eventID string) (bool, error)
	Add(ctx context.Context, eventID string) error
}

// sweepEvery is how many Adds pass between full sweeps of expired ids.
const sweepEvery = 256

// MemoryIdempotencyStore holds event ids in process memory until they expire.
type MemoryIdempotencyStore struct {
	mu       sync.Mutex
	deadline map[string]time.Time
	ttl      time.Duration
	adds     int
	now      func() time.Time
}

// NewMemoryIdempotencyStore returns a store that forgets ids after ttl.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		deadline: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Contains reports whether eventID is held and not yet expired. An expired
// id is forgotten on lookup.
func (s *MemoryIdempotencyStore) Contains(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.deadline[eventID]
	if ok && !s.now().Before(until) {
		delete(s.deadline, eventID)
		ok = false
	}
	return ok, nil
}

// Add records eventID for the store's ttl.
func (s *MemoryIdempotencyStore) Add(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.deadline[eventID] = now.Add(s.ttl)
	if s.adds++; s.adds%sweepEvery == 0 {
		for id, until := range s.deadline {
			if !now.Before(until) {
				delete(s.deadline, id)
			}
		}
	}
	return nil
}

// Len counts held ids, expired ones not yet swept included.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deadline)
}

// IdempotentHandler runs inner at most once per event id. The id is recorded
// only when inner succeeds, and a failing store lets the event through.
// Events without an id are always handled.
func IdempotentHandler(store IdempotencyStore, inner Handler, l *slog.Logger) Handler {
	if l == nil {
		l = logger.Nop()
	}
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			return inner(ctx, event)
		}
		log := l.With(slog.String("event_id", event.EventID))

		seen, err := store.Contains(ctx, event.EventID)
		switch {
		case err != nil:
			log.WarnContext(ctx, "idempotency lookup failed", slog.String("error", err.Error()))
		case seen:
			messagesSkipped.WithLabelValues(event.EventType, "duplicate").Inc()
			log.DebugContext(ctx, "duplicate event ignored", slog.String("event_type", event.EventType))
			return nil
		}

		if err := inner(ctx, event); err != nil {
			return err
		}
		if err := store.Add(ctx, event.EventID); err != nil {
			log.WarnContext(ctx, "idempotency record failed", slog.String("error", err.Error()))
		}
		return nil
	}
}

// SkipSource drops events whose envelope source is source, so a process that
// consumes its own topic does not apply its own notifications twice.
func SkipSource(source string, inner Handler) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.Source != source {
			return inner(ctx, event)
		}
		messagesSkipped.WithLabelValues(event.EventType, "own_source").Inc()
		return nil
	}
}
