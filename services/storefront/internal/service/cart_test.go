package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newMemoryCartStore(t *testing.T) (*CartStore, *repository.SnapshotCartRepository) {
	t.Helper()
	repo := repository.NewCartRepository(storage.NewAdapter(storage.NewMemory()))
	return NewCartStore(context.Background(), repo, newTestLogger(), WithClock(func() time.Time { return fixedNow })), repo
}

func TestCartStore_AddMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	store, repo := newMemoryCartStore(t)
	car := testCar("c1", "Mazda", 20000)

	require.NoError(t, store.Add(ctx, car, 1))
	require.NoError(t, store.Add(ctx, car, 2))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, fixedNow, items[0].AddedAt)
	assert.Equal(t, 3, store.Count())
	assert.InDelta(t, 60000, store.TotalPrice(), 0.001)

	persisted, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, persisted.Quantity("c1"))
}

func TestCartStore_AddInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryCartStore(t)

	var notified int
	sub := store.Subscribe(func(domain.Cart) { notified++ })
	defer sub.Unsubscribe()

	err := store.Add(ctx, testCar("c1", "Mazda", 20000), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 1, notified, "only the replayed initial value")
	assert.Equal(t, 0, store.Count())
}

func TestCartStore_UpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryCartStore(t)
	require.NoError(t, store.Add(ctx, testCar("c1", "Mazda", 20000), 2))

	require.NoError(t, store.UpdateQuantity(ctx, "c1", 0))

	assert.False(t, store.Contains("c1"))
	assert.Empty(t, store.Items())
}

func TestCartStore_UpdateQuantityUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryCartStore(t)

	require.NoError(t, store.UpdateQuantity(ctx, "missing", 3))
	assert.Equal(t, 0, store.Count())
}

func TestCartStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store, repo := newMemoryCartStore(t)
	require.NoError(t, store.Add(ctx, testCar("c1", "Mazda", 20000), 1))
	require.NoError(t, store.Add(ctx, testCar("c2", "Kia", 15000), 1))

	assert.True(t, store.Remove(ctx, "c1"))
	assert.False(t, store.Remove(ctx, "c1"))
	assert.Equal(t, 1, store.Quantity("c2"))

	store.Clear(ctx)
	assert.Equal(t, 0, store.Count())

	persisted, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, persisted.Len())
}

func TestCartStore_RefreshAbsentDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryCartStore(t)
	require.NoError(t, store.Add(ctx, testCar("c1", "Mazda", 20000), 2))

	var seen []domain.Cart
	sub := store.Subscribe(func(c domain.Cart) { seen = append(seen, c) })
	defer sub.Unsubscribe()

	assert.False(t, store.Refresh(ctx, testCar("other", "Kia", 1)))
	require.Len(t, seen, 1)

	updated := testCar("c1", "Mazda", 18000)
	assert.True(t, store.Refresh(ctx, updated))
	require.Len(t, seen, 2)
	assert.Equal(t, 2, store.Quantity("c1"))
	assert.InDelta(t, 36000, store.TotalPrice(), 0.001)
}

func TestCartStore_NotifiesBeforePersisting(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	repo := new(mockCartRepository)
	repo.On("Load", mock.Anything).Return(domain.Cart{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { rec.add("persist") }).
		Return(nil)

	store := NewCartStore(ctx, repo, newTestLogger())
	initial := true
	sub := store.Subscribe(func(domain.Cart) {
		if initial {
			initial = false
			return
		}
		rec.add("notify")
	})
	defer sub.Unsubscribe()

	require.NoError(t, store.Add(ctx, testCar("c1", "Mazda", 20000), 1))

	assert.Equal(t, []string{"notify", "persist"}, rec.list())
	repo.AssertExpectations(t)
}

func TestCartStore_PersistFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCartRepository)
	repo.On("Load", mock.Anything).Return(domain.Cart{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	before := testutil.ToFloat64(storePersistFailuresTotal.WithLabelValues("cart"))
	store := NewCartStore(ctx, repo, newTestLogger())

	err := store.Add(ctx, testCar("c1", "Mazda", 20000), 1)

	require.NoError(t, err)
	assert.True(t, store.Contains("c1"))
	assert.Equal(t, before+1, testutil.ToFloat64(storePersistFailuresTotal.WithLabelValues("cart")))
}

func TestCartStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ctx, repository.KeyCart, "[{broken"))

	store := NewCartStore(ctx, repository.NewCartRepository(storage.NewAdapter(mem)), newTestLogger())

	assert.Equal(t, 0, store.Count())
	require.NoError(t, store.Add(ctx, testCar("c1", "Mazda", 20000), 1))
	assert.Equal(t, 1, store.Count())
}

func TestCartStore_RestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewAdapter(storage.NewMemory())
	first := NewCartStore(ctx, repository.NewCartRepository(adapter), newTestLogger())
	require.NoError(t, first.Add(ctx, testCar("c1", "Mazda", 20000), 4))

	second := NewCartStore(ctx, repository.NewCartRepository(adapter), newTestLogger())

	assert.Equal(t, 4, second.Quantity("c1"))
}

func TestCartStore_ConcurrentAddsNotifyBeforePersisting(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	seen := map[int]bool{}
	var unseen []int

	repo := new(mockCartRepository)
	repo.On("Load", mock.Anything).Return(domain.Cart{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			count := args.Get(1).(domain.Cart).Count()
			mu.Lock()
			defer mu.Unlock()
			if !seen[count] {
				unseen = append(unseen, count)
			}
		}).
		Return(nil)

	store := NewCartStore(ctx, repo, newTestLogger())
	sub := store.Subscribe(func(c domain.Cart) {
		mu.Lock()
		defer mu.Unlock()
		seen[c.Count()] = true
	})
	defer sub.Unsubscribe()

	car := testCar("c1", "Mazda", 20000)
	var wg sync.WaitGroup
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, car, 1)
		}()
	}
	wg.Wait()

	assert.Empty(t, unseen, "every persisted cart was delivered to subscribers first")
	assert.Equal(t, 30, store.Quantity("c1"))
	repo.AssertNumberOfCalls(t, "Save", 30)
}

func TestCartStore_SubscribersSeeEveryChangeInOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemoryCartStore(t)

	var counts []int
	sub := store.Subscribe(func(c domain.Cart) { counts = append(counts, c.Count()) })

	car := testCar("c1", "Mazda", 20000)
	require.NoError(t, store.Add(ctx, car, 1))
	require.NoError(t, store.Add(ctx, car, 1))
	require.NoError(t, store.UpdateQuantity(ctx, "c1", 5))
	sub.Unsubscribe()
	sub.Unsubscribe()
	store.Clear(ctx)

	assert.Equal(t, []int{0, 1, 2, 5}, counts)
}

func TestCartStore_ConcurrentAddsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	store, repo := newMemoryCartStore(t)
	car := testCar("c1", "Mazda", 20000)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, car, 1)
		}()
	}
	wg.Wait()

	require.Len(t, store.Items(), 1)
	assert.Equal(t, 20, store.Quantity("c1"))

	persisted, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, persisted.Quantity("c1"), "the last write holds the latest snapshot")
}
