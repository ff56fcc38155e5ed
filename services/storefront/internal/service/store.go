package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
)

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used to stamp new cart lines.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// snapshotStore holds an immutable snapshot in a Subject and writes every
// accepted change through save. Mutations run one at a time: each snapshot
// reaches every subscriber before it is written. A failed write is logged
// and counted but never undoes the change.
//
// Subscribers must not mutate the store they are subscribed to.
type snapshotStore[T any] struct {
	name    string
	subject *observable.Subject[T]
	save    func(ctx context.Context, v T) error
	logger  *slog.Logger

	mu sync.Mutex
}

func newSnapshotStore[T any](name string, initial T, save func(context.Context, T) error, logger *slog.Logger) *snapshotStore[T] {
	return &snapshotStore[T]{
		name:    name,
		subject: observable.New(initial),
		save:    save,
		logger:  logger,
	}
}

// mutate applies fn to the current snapshot. When fn reports a change the new
// snapshot is published and then persisted.
func (s *snapshotStore[T]) mutate(ctx context.Context, op string, fn func(T) (T, bool)) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Update drains to every subscriber before returning since no other
	// mutation can publish while mu is held.
	next, changed := s.subject.Update(fn)
	if !changed {
		return next, false
	}
	storeMutationsTotal.WithLabelValues(s.name, op).Inc()
	s.persist(ctx, op, next)
	return next, true
}

func (s *snapshotStore[T]) persist(ctx context.Context, op string, v T) {
	if err := s.save(ctx, v); err != nil {
		storePersistFailuresTotal.WithLabelValues(s.name).Inc()
		s.logger.ErrorContext(ctx, "failed to persist store snapshot",
			slog.String("store", s.name),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

func (s *snapshotStore[T]) value() T {
	return s.subject.Value()
}

func (s *snapshotStore[T]) subscribe(fn func(T)) *observable.Subscription {
	return s.subject.Subscribe(fn)
}
