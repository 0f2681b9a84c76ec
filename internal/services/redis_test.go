package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestRedisCache_SetNXClaimsOnce(t *testing.T) {
	srv, client := newTestRedis(t)
	cache := NewRedisCache(client, "sh:")
	ctx := context.Background()

	ok, err := cache.SetNX(ctx, "revoked:abc", true, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.SetNX(ctx, "revoked:abc", true, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "the key is already claimed")

	var revoked bool
	require.NoError(t, cache.Get(ctx, "revoked:abc", &revoked))
	assert.True(t, revoked)
	assert.True(t, srv.Exists("sh:revoked:abc"))
	assert.Equal(t, time.Hour, srv.TTL("sh:revoked:abc"))

	require.NoError(t, cache.Delete(ctx, "revoked:abc"))
	assert.ErrorIs(t, cache.Get(ctx, "revoked:abc", &revoked), ErrCacheMiss)
}

func TestRedisQueue_RequeuesUnacknowledgedJobs(t *testing.T) {
	srv, client := newTestRedis(t)
	q := NewRedisQueue(client, "jobs", zap.NewNop())

	// A job a previous process took but never finished.
	_, err := srv.Lpush("jobs:processing", "stale")
	require.NoError(t, err)
	require.NoError(t, q.Publish(context.Background(), []byte("fresh")))

	var mu sync.Mutex
	var handled []string
	require.NoError(t, q.StartConsuming(context.Background(), 2, func(_ context.Context, data []byte) error {
		mu.Lock()
		handled = append(handled, string(data))
		mu.Unlock()
		return nil
	}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	}, 3*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))

	sort.Strings(handled)
	assert.Equal(t, []string{"fresh", "stale"}, handled)
	assert.False(t, srv.Exists("jobs:processing"), "finished jobs are acknowledged")
	assert.False(t, srv.Exists("jobs"))
}

func TestRedisLimiter_Allow(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := NewRedisLimiter(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := limiter.Allow(ctx, "anon:ip:203.0.113.7", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, err := limiter.Allow(ctx, "anon:ip:203.0.113.7", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.LessOrEqual(t, retry, time.Minute)

	ok, _, err = limiter.Allow(ctx, "anon:ip:198.51.100.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")
}
