// Package observable provides in-process change streams for state stores.
//
// A Subject holds a current value and replays it to every new subscriber.
// A Stream carries events only. Both deliver values to subscribers in the
// order they were published, one value at a time, and never run an observer
// while holding an internal lock: an observer may publish, subscribe or
// unsubscribe from inside its callback, and the work it triggers is queued
// behind the delivery in progress.
package observable

import (
	"sync"
	"sync/atomic"
)

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	closed atomic.Bool
	remove func()
}

// Unsubscribe stops delivery. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.remove != nil {
		s.remove()
	}
}

// Closed reports whether Unsubscribe has been called.
func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

type subscriber[T any] struct {
	fn     func(T)
	joined uint64
	handle *Subscription
}

type delivery[T any] struct {
	seq    uint64
	value  T
	target *subscriber[T]
}

// hub is the delivery engine shared by Subject and Stream.
type hub[T any] struct {
	mu       sync.Mutex
	seq      uint64
	subs     []*subscriber[T]
	queue    []delivery[T]
	draining bool
}

// publishLocked enqueues v for every current subscriber. Callers hold h.mu
// and must call drain once they release it.
func (h *hub[T]) publishLocked(v T) {
	h.seq++
	h.queue = append(h.queue, delivery[T]{seq: h.seq, value: v})
}

func (h *hub[T]) subscribeLocked(fn func(T)) *subscriber[T] {
	sub := &subscriber[T]{fn: fn, joined: h.seq}
	sub.handle = &Subscription{remove: func() { h.unsubscribe(sub) }}
	h.subs = append(h.subs, sub)
	return sub
}

func (h *hub[T]) unsubscribe(sub *subscriber[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s == sub {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// drain delivers queued values unless another call is already doing so.
// It must be called without h.mu held.
func (h *hub[T]) drain() {
	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		return
	}
	h.draining = true
	h.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			h.mu.Lock()
			h.draining = false
			h.mu.Unlock()
			panic(r)
		}
	}()

	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.draining = false
			h.mu.Unlock()
			return
		}
		d := h.queue[0]
		h.queue[0] = delivery[T]{}
		h.queue = h.queue[1:]

		var targets []*subscriber[T]
		if d.target != nil {
			targets = []*subscriber[T]{d.target}
		} else {
			targets = make([]*subscriber[T], len(h.subs))
			copy(targets, h.subs)
		}
		h.mu.Unlock()

		for _, s := range targets {
			if s.handle.Closed() {
				continue
			}
			// Subscribers only see broadcasts published after they joined.
			if d.target == nil && d.seq <= s.joined {
				continue
			}
			s.fn(d.value)
		}
	}
}

func (h *hub[T]) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Subject is a replay-latest value holder.
type Subject[T any] struct {
	hub   hub[T]
	value T
}

// New returns a Subject holding initial.
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the current value.
func (s *Subject[T]) Value() T {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.value
}

// Next replaces the current value and pushes it to all subscribers.
func (s *Subject[T]) Next(v T) {
	s.hub.mu.Lock()
	s.value = v
	s.hub.publishLocked(v)
	s.hub.mu.Unlock()
	s.hub.drain()
}

// Update applies fn to the current value atomically. When fn reports a
// change the result becomes the current value and is pushed to subscribers;
// otherwise nothing is published. Update returns the value held afterwards.
func (s *Subject[T]) Update(fn func(current T) (T, bool)) (T, bool) {
	s.hub.mu.Lock()
	next, changed := fn(s.value)
	if !changed {
		cur := s.value
		s.hub.mu.Unlock()
		return cur, false
	}
	s.value = next
	s.hub.publishLocked(next)
	s.hub.mu.Unlock()
	s.hub.drain()
	return next, true
}

// Subscribe registers fn. It is called with the current value first and
// then with every later value.
func (s *Subject[T]) Subscribe(fn func(T)) *Subscription {
	s.hub.mu.Lock()
	sub := s.hub.subscribeLocked(fn)
	s.hub.queue = append(s.hub.queue, delivery[T]{seq: s.hub.seq, value: s.value, target: sub})
	s.hub.mu.Unlock()
	s.hub.drain()
	return sub.handle
}

// Subscribers returns the number of active subscriptions.
func (s *Subject[T]) Subscribers() int {
	return s.hub.count()
}

// Stream delivers published values to current subscribers without replay.
type Stream[T any] struct {
	hub hub[T]
}

// NewStream returns an empty Stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Publish pushes v to all current subscribers.
func (s *Stream[T]) Publish(v T) {
	s.hub.mu.Lock()
	s.hub.publishLocked(v)
	s.hub.mu.Unlock()
	s.hub.drain()
}

// Subscribe registers fn for values published from now on.
func (s *Stream[T]) Subscribe(fn func(T)) *Subscription {
	s.hub.mu.Lock()
	sub := s.hub.subscribeLocked(fn)
	s.hub.mu.Unlock()
	return sub.handle
}

// Subscribers returns the number of active subscriptions.
func (s *Stream[T]) Subscribers() int {
	return s.hub.count()
}
