package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the co-purchase store connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis builds a Redis client without contacting the server. The client
// dials lazily and reconnects on its own.
func NewRedis(opts RedisOptions) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address not configured")
	}
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}), nil
}

// PingRedis checks that the server answers within five seconds.
func PingRedis(ctx context.Context, client redis.UniversalClient) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(pingCtx).Err()
}

// ConnectRedis builds a Redis client and verifies it answers PING.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client, err := NewRedis(opts)
	if err != nil {
		return nil, err
	}
	if err := PingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}
