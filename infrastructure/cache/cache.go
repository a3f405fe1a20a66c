package cache

import (
	"context"

	"socialflow/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis at addr and pings it once.
func NewCache(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("addr", addr).WithField("error", err).Warn("Redis ping failed")
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
