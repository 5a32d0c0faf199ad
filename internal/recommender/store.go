package recommender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable marks failures to reach the co-purchase store.
var ErrStoreUnavailable = errors.New("recommendation store unavailable")

// Store is the sorted-set capability the recommender needs. Any ordered
// key-value backend can implement it.
type Store interface {
	IncrBy(ctx context.Context, key, member string, delta float64) error
	// RangeDesc returns up to limit members of key, highest score first.
	RangeDesc(ctx context.Context, key string, limit int) ([]string, error)
	// UnionStore writes the score-summed union of keys into dest.
	UnionStore(ctx context.Context, dest string, keys []string) error
	Remove(ctx context.Context, key string, members ...string) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore implements Store on Redis sorted sets.
type RedisStore struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisStore bounds every call by timeout; zero means no extra bound.
func NewRedisStore(client redis.UniversalClient, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, timeout: timeout}
}

func (s *RedisStore) IncrBy(ctx context.Context, key, member string, delta float64) error {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return wrap(ctx, "zincrby", s.client.ZIncrBy(callCtx, key, delta, member).Err())
}

func (s *RedisStore) RangeDesc(ctx context.Context, key string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	members, err := s.client.ZRevRange(callCtx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, wrap(ctx, "zrevrange", err)
	}
	return members, nil
}

func (s *RedisStore) UnionStore(ctx context.Context, dest string, keys []string) error {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return wrap(ctx, "zunionstore", s.client.ZUnionStore(callCtx, dest, &redis.ZStore{Keys: keys}).Err())
}

func (s *RedisStore) Remove(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return wrap(ctx, "zrem", s.client.ZRem(callCtx, key, args...).Err())
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return wrap(ctx, "del", s.client.Del(callCtx, keys...).Err())
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// wrap classifies a store error. Only transport failures and the store's
// own timeout count as ErrStoreUnavailable; a cancelled or expired caller
// context and command errors replied by Redis are returned as they are.
func wrap(ctx context.Context, op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
