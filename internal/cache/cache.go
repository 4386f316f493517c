package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss reports that a key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the minimal fast-cache surface the core needs: string values with
// TTLs, atomic increments, plain sets, and a ranked set. Redis provides the
// production implementation; tests use the in-memory one.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	ScanPrefix(ctx context.Context, prefix string) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}
