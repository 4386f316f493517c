package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Del(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheSetNX(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	created, err := c.SetNX(ctx, "k", "first", 0)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.SetNX(ctx, "k", "second", 0)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestMemoryCacheIncr(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	n, err := c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Set(ctx, "bad", "abc", 0))
	_, err = c.Incr(ctx, "bad")
	assert.Error(t, err)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheSets(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.SAdd(ctx, "s", "b", "a", "b"))
	members, err := c.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)

	require.NoError(t, c.SRem(ctx, "s", "a"))
	members, err = c.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)
}

func TestMemoryCacheZRevRange(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.ZAdd(ctx, "z", "low", 1))
	require.NoError(t, c.ZAdd(ctx, "z", "high", 9))
	require.NoError(t, c.ZAdd(ctx, "z", "mid", 5))

	members, err := c.ZRevRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "mid", "low"}, members)

	members, err = c.ZRevRange(ctx, "z", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "mid"}, members)

	members, err = c.ZRevRange(ctx, "missing", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMemoryCacheScanPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "post:view:1", "3", 0))
	require.NoError(t, c.Set(ctx, "post:view:2", "1", 0))
	require.NoError(t, c.Set(ctx, "other:1", "x", 0))

	keys, err := c.ScanPrefix(ctx, "post:view:")
	require.NoError(t, err)
	assert.Equal(t, []string{"post:view:1", "post:view:2"}, keys)
}
