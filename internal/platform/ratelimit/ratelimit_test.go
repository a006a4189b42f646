package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/shruggbot/internal/platform/config"
)

func TestMemoryAllowsQuotaPerKey(t *testing.T) {
	m := NewMemory(Quota{Requests: 3, Window: time.Minute})
	ctx := context.Background()

	for i := range 3 {
		ok, err := m.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := m.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request is over quota")

	ok, err = m.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "other clients keep their own quota")
}

func TestMemoryRefillsAfterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m := NewMemory(Quota{Requests: 2, Window: time.Minute})
	m.now = func() time.Time { return now }

	ctx := context.Background()

	for range 2 {
		ok, _ := m.Allow(ctx, "k")
		require.True(t, ok)
	}

	ok, _ := m.Allow(ctx, "k")
	require.False(t, ok)

	now = now.Add(time.Minute)

	ok, _ = m.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestMemorySweepsIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m := NewMemory(Quota{Requests: 1, Window: time.Second})
	m.now = func() time.Time { return now }

	ctx := context.Background()

	_, _ = m.Allow(ctx, "a")
	_, _ = m.Allow(ctx, "b")
	require.Equal(t, 2, m.Len())

	now = now.Add(5 * time.Second)

	_, _ = m.Allow(ctx, "c")
	assert.Equal(t, 1, m.Len())
}

func TestQuotaDefaults(t *testing.T) {
	q := Quota{}.withDefaults()

	assert.Equal(t, defaultRequests, q.Requests)
	assert.Equal(t, defaultWindow, q.Window)
}

func TestRedisKeyBucketsByWindow(t *testing.T) {
	r := NewRedis(nil, "http", Quota{Requests: 5, Window: time.Minute})

	base := time.Date(2024, 1, 1, 10, 0, 10, 0, time.UTC)
	r.now = func() time.Time { return base }
	first := r.key("1.2.3.4")

	r.now = func() time.Time { return base.Add(30 * time.Second) }
	assert.Equal(t, first, r.key("1.2.3.4"), "same window")

	r.now = func() time.Time { return base.Add(time.Minute) }
	assert.NotEqual(t, first, r.key("1.2.3.4"), "next window")

	assert.Contains(t, first, keyPrefix+"http:1.2.3.4:")
}

func TestRedisUnreachableReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := NewRedis(client, "http", Quota{Requests: 1, Window: time.Minute})

	ok, err := r.Allow(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestNewSelectsBackend(t *testing.T) {
	logger := zerolog.Nop()

	limiter, closeFn, err := New(&config.Config{RateLimitBackend: "memory", RateLimitRequests: 1, RateLimitWindow: time.Minute}, "http", &logger)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &Memory{}, limiter)

	limiter, closeFn, err = New(&config.Config{RateLimitBackend: "redis", RedisURL: "redis://127.0.0.1:6379/0"}, "http", &logger)
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, limiter)
	require.NoError(t, closeFn())

	_, _, err = New(&config.Config{RateLimitBackend: "carrier-pigeon"}, "http", &logger)
	require.ErrorIs(t, err, ErrUnknownBackend)

	_, _, err = New(&config.Config{RateLimitBackend: "redis", RedisURL: "::not a url"}, "http", &logger)
	require.Error(t, err)
}
