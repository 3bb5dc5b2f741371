// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	// returned slices are copies
	got[0] = 'x'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "v", string(again))

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c := NewMemoryCache(time.Minute, 5*time.Millisecond)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Millisecond))

	assert.Eventually(t, func() bool {
		_, ok := c.data.Load("k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrCacheClosed)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheClosed)
}

func TestStats_HitRate(t *testing.T) {
	assert.Zero(t, Stats{}.HitRate())
	assert.InDelta(t, 75.0, Stats{Hits: 3, Misses: 1}.HitRate(), 0.001)
}

// failingCache fails every call with err.
type failingCache struct{ err error }

func (f failingCache) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingCache) Set(context.Context, string, []byte, time.Duration) error { return f.err }
func (f failingCache) Delete(context.Context, string) error { return f.err }
func (f failingCache) Close() error { return nil }

func TestNameCache(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache(time.Minute, 0)
	defer func() { _ = mem.Close() }()
	names := NewNameCache(mem, 0)

	found, missing := names.Lookup(ctx, "u1", "u2", "u1")
	assert.Empty(t, found)
	assert.Equal(t, []string{"u1", "u2"}, missing)

	names.Store(ctx, map[string]string{"u1": "Ada Lovelace"})

	found, missing = names.Lookup(ctx, "u1", "u2")
	assert.Equal(t, map[string]string{"u1": "Ada Lovelace"}, found)
	assert.Equal(t, []string{"u2"}, missing)
}

func TestNameCache_BackendErrorsAreMisses(t *testing.T) {
	names := NewNameCache(failingCache{err: errors.New("connection refused")}, time.Minute)

	found, missing := names.Lookup(context.Background(), "u1")
	assert.Empty(t, found)
	assert.Equal(t, []string{"u1"}, missing)

	// Store swallows backend errors
	names.Store(context.Background(), map[string]string{"u1": "Ada"})
}

// skipIfNoRedis skips the test if Redis is not configured.
func skipIfNoRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("NEWSBOARD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: NEWSBOARD_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCache(t *testing.T) {
	client := skipIfNoRedis(t)
	c := NewRedisCache(client, "newsboard:test:", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrCacheClosed)
	// the shared client is still usable
	assert.NoError(t, client.Ping(ctx).Err())
}

func TestNewRedisCache_DefaultPrefix(t *testing.T) {
	c := NewRedisCache(nil, "", time.Minute)
	assert.Equal(t, DefaultRedisPrefix+"k", c.prefixKey("k"))
}
