package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// RecentSize is the number of events kept for Recent.
const RecentSize = 50

const sinkTimeout = 5 * time.Second

// Sink receives every local event after in-process subscribers saw it.
type Sink interface {
	Send(ctx context.Context, ev CarEvent) error
}

type queued struct {
	ctx context.Context
	ev  CarEvent
}

// Notifier fans car events out to in-process subscribers and an optional
// Sink. Publishing only enqueues; a single dispatcher goroutine delivers
// events in publish order, so subscribers never run on the publisher's stack.
type Notifier struct {
	stream *observable.Stream[CarEvent]
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	queue  []queued
	recent []CarEvent
	closed bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithSink forwards local events to s.
func WithSink(s Sink) NotifierOption {
	return func(n *Notifier) { n.sink = s }
}

// WithClock overrides the event timestamp clock.
func WithClock(now func() time.Time) NotifierOption {
	return func(n *Notifier) { n.now = now }
}

// NewNotifier starts a notifier. Call Close to stop its dispatcher.
func NewNotifier(log *slog.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		stream: observable.NewStream[CarEvent](),
		logger: logger.Component(log, "notifier"),
		now:    time.Now,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// CarCreated announces a created car.
func (n *Notifier) CarCreated(ctx context.Context, car domain.Car) {
	n.enqueue(ctx, n.newEvent(TypeCreated, car.ID, &car))
}

// CarUpdated announces an updated car.
func (n *Notifier) CarUpdated(ctx context.Context, car domain.Car) {
	n.enqueue(ctx, n.newEvent(TypeUpdated, car.ID, &car))
}

// CarDeleted announces a deleted car.
func (n *Notifier) CarDeleted(ctx context.Context, id string) {
	n.enqueue(ctx, n.newEvent(TypeDeleted, id, nil))
}

// PublishRemote delivers an event that originated in another process. It
// reaches local subscribers but is never forwarded to the sink.
func (n *Notifier) PublishRemote(ctx context.Context, ev CarEvent) {
	ev.Remote = true
	n.enqueue(ctx, ev)
}

// Subscribe calls fn for every event published from now on.
func (n *Notifier) Subscribe(fn func(CarEvent)) *observable.Subscription {
	return n.stream.Subscribe(fn)
}

// Recent returns up to RecentSize delivered events, newest first.
func (n *Notifier) Recent() []CarEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]CarEvent, len(n.recent))
	for i, ev := range n.recent {
		out[len(n.recent)-1-i] = ev
	}
	return out
}

// Close stops accepting events, delivers what is queued and waits for the
// dispatcher to exit. It is safe to call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) newEvent(t Type, carID string, car *domain.Car) CarEvent {
	return CarEvent{
		ID:    uuid.New().String(),
		Type:  t,
		CarID: carID,
		Car:   car,
		At:    n.now().UTC(),
	}
}

func (n *Notifier) enqueue(ctx context.Context, ev CarEvent) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		n.logger.WarnContext(ctx, "notifier closed, dropping event",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
		)
		return
	}
	n.queue = append(n.queue, queued{ctx: context.WithoutCancel(ctx), ev: ev})
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *Notifier) take() []queued {
	n.mu.Lock()
	defer n.mu.Unlock()
	batch := n.queue
	n.queue = nil
	return batch
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.wake:
			n.flush()
		case <-n.done:
			n.flush()
			return
		}
	}
}

func (n *Notifier) flush() {
	for {
		batch := n.take()
		if len(batch) == 0 {
			return
		}
		for _, q := range batch {
			n.dispatch(q.ctx, q.ev)
		}
	}
}

func (n *Notifier) dispatch(ctx context.Context, ev CarEvent) {
	n.mu.Lock()
	n.recent = append(n.recent, ev)
	if len(n.recent) > RecentSize {
		n.recent = n.recent[len(n.recent)-RecentSize:]
	}
	n.mu.Unlock()

	n.deliver(ctx, ev)

	if n.sink == nil || ev.Remote {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
	defer cancel()
	if err := n.sink.Send(sendCtx, ev); err != nil {
		n.logger.ErrorContext(ctx, "failed to forward car event",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
			slog.String("car_id", ev.CarID),
			slog.String("error", err.Error()),
		)
	}
}

// deliver runs subscribers; a panicking subscriber must not kill the
// dispatcher.
func (n *Notifier) deliver(ctx context.Context, ev CarEvent) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.ErrorContext(ctx, "car event subscriber panicked",
				slog.String("event_id", ev.ID),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	n.stream.Publish(ev)
}
