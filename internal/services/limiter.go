package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	// Allow records a hit and reports whether key is still under limit,
	// plus the time left until the window resets.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	bucket := time.Now().UnixNano() / int64(window)
	k := fmt.Sprintf("throttle:%s:%d", key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	resetAt := time.Unix(0, (bucket+1)*int64(window))
	return incr.Val() <= int64(limit), time.Until(resetAt), nil
}
