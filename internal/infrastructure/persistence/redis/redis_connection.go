// Package redis provides the Redis-backed network-origin store and its
// connection management.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/pkg/logger"
)

// RedisConnection manages the Redis client lifecycle.
type RedisConnection struct {
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection establishes and verifies a Redis connection.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) (*RedisConnection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info(ctx, "Redis connection established",
		logger.String("addr", cfg.Addr()),
		logger.Int("db", cfg.DB),
	)

	return &RedisConnection{client: client, logger: log}, nil
}

// Client returns the underlying Redis client.
func (rc *RedisConnection) Client() redis.UniversalClient {
	return rc.client
}

// Ping checks Redis connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close shuts the client down.
func (rc *RedisConnection) Close() error {
	rc.logger.Info(context.Background(), "closing Redis connection")
	return rc.client.Close()
}
