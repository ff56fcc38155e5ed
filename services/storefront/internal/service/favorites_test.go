package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
)

func TestFavoritesStore_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := new(mockFavoritesRepository)
	repo.On("Load", mock.Anything).Return(domain.Favorites{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	store := NewFavoritesStore(ctx, repo, newTestLogger())
	var notified int
	sub := store.Subscribe(func(domain.Favorites) { notified++ })
	defer sub.Unsubscribe()

	assert.True(t, store.Add(ctx, testCar("a", "Kia", 1)))
	assert.False(t, store.Add(ctx, testCar("a", "Kia", 1)))

	assert.Equal(t, 1, store.Count())
	assert.Equal(t, 2, notified, "initial value plus one change")
	repo.AssertExpectations(t)
}

func TestFavoritesStore_ToggleReturnsMembership(t *testing.T) {
	ctx := context.Background()
	store := NewFavoritesStore(ctx, repository.NewFavoritesRepository(storage.NewAdapter(storage.NewMemory())), newTestLogger())
	car := testCar("a", "Kia", 1)

	assert.True(t, store.Toggle(ctx, car))
	assert.True(t, store.Contains("a"))
	assert.False(t, store.Toggle(ctx, car))
	assert.False(t, store.Contains("a"))
}

func TestFavoritesStore_KeepsInsertionOrderAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(storage.NewMemory())
	first := NewFavoritesStore(ctx, repository.NewFavoritesRepository(adapter), newTestLogger())
	for _, id := range []string{"c", "a", "b"} {
		first.Add(ctx, testCar(id, "Kia", 1))
	}
	first.Remove(ctx, "a")

	second := NewFavoritesStore(ctx, repository.NewFavoritesRepository(adapter), newTestLogger())

	items := second.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
}

func TestFavoritesStore_Refresh(t *testing.T) {
	ctx := context.Background()
	store := NewFavoritesStore(ctx, repository.NewFavoritesRepository(storage.NewAdapter(nil)), newTestLogger())
	store.Add(ctx, testCar("a", "Kia", 1))

	updated := testCar("a", "Kia", 999)
	assert.True(t, store.Refresh(ctx, updated))
	assert.False(t, store.Refresh(ctx, testCar("zz", "Kia", 1)))
	assert.InDelta(t, 999, store.Items()[0].Price, 0.001)
}

func TestFavoritesStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ctx, repository.KeyFavorites, "nope"))

	store := NewFavoritesStore(ctx, repository.NewFavoritesRepository(storage.NewAdapter(mem)), newTestLogger())

	assert.Equal(t, 0, store.Count())
}
