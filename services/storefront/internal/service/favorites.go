package service

import (
	"context"
	"log/slog"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
)

// FavoritesStore is the reactive set of cars the user marked as favorite.
type FavoritesStore struct {
	store *snapshotStore[domain.Favorites]
}

// NewFavoritesStore restores favorites from repo, starting empty when the
// snapshot cannot be read.
func NewFavoritesStore(ctx context.Context, repo repository.FavoritesRepository, log *slog.Logger) *FavoritesStore {
	log = logger.Component(log, "favorites_store")

	initial, err := repo.Load(ctx)
	if err != nil {
		logRestoreFailure(ctx, log, "favorites", err)
		initial = domain.Favorites{}
	}
	return &FavoritesStore{store: newSnapshotStore("favorites", initial, repo.Save, log)}
}

func (s *FavoritesStore) Snapshot() domain.Favorites { return s.store.value() }
func (s *FavoritesStore) Items() []domain.Car        { return s.store.value().Items() }
func (s *FavoritesStore) Count() int                 { return s.store.value().Len() }

func (s *FavoritesStore) Contains(carID string) bool {
	return s.store.value().Contains(carID)
}

// Subscribe calls fn with the current favorites and every later set.
func (s *FavoritesStore) Subscribe(fn func(domain.Favorites)) *observable.Subscription {
	return s.store.subscribe(fn)
}

// Add marks car as favorite. It reports false when it already was one.
func (s *FavoritesStore) Add(ctx context.Context, car domain.Car) bool {
	_, changed := s.store.mutate(ctx, "add", func(f domain.Favorites) (domain.Favorites, bool) {
		return f.Add(car)
	})
	return changed
}

// Remove unmarks carID. It reports false when it was not a favorite.
func (s *FavoritesStore) Remove(ctx context.Context, carID string) bool {
	_, changed := s.store.mutate(ctx, "remove", func(f domain.Favorites) (domain.Favorites, bool) {
		return f.Remove(carID)
	})
	return changed
}

// Toggle flips the membership of car and returns the new membership.
func (s *FavoritesStore) Toggle(ctx context.Context, car domain.Car) bool {
	next, _ := s.store.mutate(ctx, "toggle", func(f domain.Favorites) (domain.Favorites, bool) {
		if f.Contains(car.ID) {
			return f.Remove(car.ID)
		}
		return f.Add(car)
	})
	return next.Contains(car.ID)
}

// Refresh replaces the stored copy of car when it is a favorite.
func (s *FavoritesStore) Refresh(ctx context.Context, car domain.Car) bool {
	_, changed := s.store.mutate(ctx, "refresh", func(f domain.Favorites) (domain.Favorites, bool) {
		return f.Replace(car)
	})
	return changed
}
