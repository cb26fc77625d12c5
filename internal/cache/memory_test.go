package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avadispatch/internal/config"
	"github.com/vyrodovalexey/avadispatch/internal/observability"
)

func newTestMemoryCache(t *testing.T, cfg *config.CacheConfig) *memoryCache {
	t.Helper()

	c, err := newMemoryCache(cfg, observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Update(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), 0))
	require.NoError(t, c.Set(ctx, "k", []byte("v2"), 0))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), val)
	assert.Equal(t, int64(1), c.Stats().Size)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true, MaxEntries: 2})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	// Touch "a" so "b" becomes the eviction candidate.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Deleting a missing key is not an error.
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestMemoryCache_Exists(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	exists, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Size)
	assert.InDelta(t, 66.6, stats.HitRate(), 0.1)
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 5*time.Millisecond))
	}
	require.NoError(t, c.Set(ctx, "keep", []byte("v"), 0))

	time.Sleep(10 * time.Millisecond)
	c.cleanup()

	assert.Equal(t, int64(1), c.Stats().Size)
}

func TestMemoryCache_DefaultMaxEntries(t *testing.T) {
	c := newTestMemoryCache(t, &config.CacheConfig{Enabled: true})
	assert.Equal(t, 10000, c.maxEntries)
}

func TestDisabledCache(t *testing.T) {
	c, err := New(&config.CacheConfig{Enabled: false}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheDisabled)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrCacheDisabled)
	assert.ErrorIs(t, c.Delete(ctx, "k"), ErrCacheDisabled)

	_, err = c.Exists(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheDisabled)
	assert.NoError(t, c.Close())
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(&config.CacheConfig{Enabled: true, Type: "memcached"}, nil)
	assert.Error(t, err)

	_, err = New(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
