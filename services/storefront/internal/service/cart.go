package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
)

// CartStore is the reactive shopping cart of the session.
type CartStore struct {
	store *snapshotStore[domain.Cart]
	now   func() time.Time
}

// NewCartStore restores the cart from repo. A snapshot that cannot be read
// is logged and the store starts empty.
func NewCartStore(ctx context.Context, repo repository.CartRepository, log *slog.Logger, opts ...Option) *CartStore {
	o := buildOptions(opts)
	log = logger.Component(log, "cart_store")

	initial, err := repo.Load(ctx)
	if err != nil {
		logRestoreFailure(ctx, log, "cart", err)
		initial = domain.Cart{}
	}

	return &CartStore{
		store: newSnapshotStore("cart", initial, repo.Save, log),
		now:   o.now,
	}
}

// Snapshot returns the current cart.
func (s *CartStore) Snapshot() domain.Cart { return s.store.value() }

// Items returns a copy of the cart lines.
func (s *CartStore) Items() []domain.CartItem { return s.store.value().Items() }

// Subscribe calls fn with the current cart and every later one.
func (s *CartStore) Subscribe(fn func(domain.Cart)) *observable.Subscription {
	return s.store.subscribe(fn)
}

// Add puts quantity units of car into the cart, merging with an existing line.
func (s *CartStore) Add(ctx context.Context, car domain.Car, quantity int) error {
	var addErr error
	s.store.mutate(ctx, "add", func(c domain.Cart) (domain.Cart, bool) {
		next, err := c.Add(car, quantity, s.now())
		if err != nil {
			addErr = err
			return c, false
		}
		return next, true
	})
	return addErr
}

// Remove drops the line for carID. It reports whether a line was removed.
func (s *CartStore) Remove(ctx context.Context, carID string) bool {
	_, changed := s.store.mutate(ctx, "remove", func(c domain.Cart) (domain.Cart, bool) {
		return c.Remove(carID)
	})
	return changed
}

// UpdateQuantity sets the quantity of the line for carID. A quantity of 0 or
// less removes the line; an unknown car id is a no-op.
func (s *CartStore) UpdateQuantity(ctx context.Context, carID string, quantity int) error {
	var updErr error
	s.store.mutate(ctx, "update_quantity", func(c domain.Cart) (domain.Cart, bool) {
		next, changed, err := c.SetQuantity(carID, quantity)
		if err != nil {
			updErr = err
			return c, false
		}
		return next, changed
	})
	return updErr
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) {
	s.store.mutate(ctx, "clear", func(c domain.Cart) (domain.Cart, bool) {
		return domain.Cart{}, c.Len() > 0
	})
}

// Refresh replaces the stored copy of car, keeping its quantity. It reports
// false, and notifies nobody, when car is not in the cart.
func (s *CartStore) Refresh(ctx context.Context, car domain.Car) bool {
	_, changed := s.store.mutate(ctx, "refresh", func(c domain.Cart) (domain.Cart, bool) {
		return c.Replace(car)
	})
	return changed
}

func (s *CartStore) Contains(carID string) bool { return s.store.value().Contains(carID) }
func (s *CartStore) Quantity(carID string) int  { return s.store.value().Quantity(carID) }
func (s *CartStore) Count() int                 { return s.store.value().Count() }
func (s *CartStore) TotalPrice() float64        { return s.store.value().TotalPrice() }

func logRestoreFailure(ctx context.Context, log *slog.Logger, store string, err error) {
	msg := "failed to read stored snapshot, starting empty"
	if errors.Is(err, storage.ErrCorrupt) {
		msg = "discarding corrupt stored snapshot"
	}
	log.WarnContext(ctx, msg,
		slog.String("store", store),
		slog.String("error", err.Error()),
	)
}
