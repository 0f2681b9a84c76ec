package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis pings the server with retries before handing out the client.
func ConnectRedis(ctx context.Context, addr, password string, db int, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Network:  "tcp",
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	var err error
	for i := 1; i <= maxRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			log.Info("connected to redis", zap.String("addr", addr))
			return client, nil
		}
		log.Warn("failed to connect to redis", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		if i == maxRetries {
			break
		}
		if werr := backoff(ctx); werr != nil {
			err = werr
			break
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("connect redis: %w", err)
}
