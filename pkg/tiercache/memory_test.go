package tiercache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/fieldkit/pkg/tiercache"
	"github.com/fieldserve/fieldkit/pkg/tiers"
)

func TestMemoryCacheSetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := tiercache.NewMemoryCache()
	id := uuid.New()

	_, ok := cache.Get(ctx, id)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, id, tiers.Pro))
	got, ok := cache.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, tiers.Pro, got)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cache := tiercache.NewMemoryCache(
		tiercache.WithTTL(5*time.Minute),
		tiercache.WithClock(func() time.Time { return now }),
	)
	id := uuid.New()
	require.NoError(t, cache.Set(ctx, id, tiers.Starter))

	now = now.Add(5*time.Minute - time.Second)
	_, ok := cache.Get(ctx, id)
	assert.True(t, ok, "entry still fresh just before the deadline")

	now = now.Add(time.Second)
	_, ok = cache.Get(ctx, id)
	assert.False(t, ok, "entry expired once the full TTL has elapsed")
}

func TestMemoryCacheInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := tiercache.NewMemoryCache()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, cache.Set(ctx, a, tiers.Pro))
	require.NoError(t, cache.Set(ctx, b, tiers.Enterprise))

	require.NoError(t, cache.Invalidate(ctx, a))

	_, ok := cache.Get(ctx, a)
	assert.False(t, ok)
	got, ok := cache.Get(ctx, b)
	require.True(t, ok, "invalidation is per contractor")
	assert.Equal(t, tiers.Enterprise, got)
}

func TestMemoryCacheClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := tiercache.NewMemoryCache()
	for range 3 {
		require.NoError(t, cache.Set(ctx, uuid.New(), tiers.Pro))
	}
	require.Equal(t, 3, cache.Len())

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
}
