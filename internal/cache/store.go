package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrUnavailable wraps every failure of the underlying Redis client.
var ErrUnavailable = errors.New("cache: store unavailable")

// Store is a string key-value store with expiry on top of Redis.
type Store struct {
	rdb goredis.Cmdable
	log *zap.Logger
}

func NewStore(rdb goredis.Cmdable, log *zap.Logger) *Store {
	return &Store{rdb: rdb, log: log}
}

// Set writes value under key and applies ttl in the same MULTI/EXEC block,
// so readers never observe the key without its expiry.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return s.fail("set", key, err)
	}
	return nil
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return s.fail("expire", key, err)
	}
	return nil
}

// Get returns found == false when the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("get", key, err)
	}
	return val, true, nil
}

func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return s.fail("del", key, err)
	}
	return nil
}

func (s *Store) fail(op, key string, err error) error {
	s.log.Error("redis command failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
