package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "", ttl), mr
}

func TestStore_SetAndGet(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "userEmail", "ana@example.com"))

	raw, err := mr.Get("storefront:userEmail")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", raw)

	v, ok, err := store.GetItem(ctx, "userEmail")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ana@example.com", v)
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t, 0)

	v, ok, err := store.GetItem(context.Background(), "favorites")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStore_Remove(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "isAuthenticated", "true"))
	require.NoError(t, store.RemoveItem(ctx, "isAuthenticated"))
	require.NoError(t, store.RemoveItem(ctx, "isAuthenticated"))
	assert.False(t, mr.Exists("storefront:isAuthenticated"))
}

func TestStore_TTL(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "marketplace_cart", "[]"))
	assert.Equal(t, time.Hour, mr.TTL("storefront:marketplace_cart"))

	mr.FastForward(2 * time.Hour)
	_, ok, err := store.GetItem(ctx, "marketplace_cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_BackendDown(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	mr.Close()

	err := store.SetItem(context.Background(), "favorites", "[]")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := Open(context.Background(), Config{Addr: mr.Addr(), Prefix: "tab-1:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	a := storage.NewAdapter(store)
	assert.True(t, a.Available())
	require.NoError(t, a.SetJSON(context.Background(), "favorites", []string{"car-1"}))
	assert.True(t, mr.Exists("tab-1:favorites"))
}

func TestOpen_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), Config{Addr: addr})
	assert.ErrorContains(t, err, "ping redis")
}
