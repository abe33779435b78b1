/*
Package redis caches stored schedules in Redis in front of another store.

PURPOSE:
  Stored schedules are immutable once saved, so Get by ID is safe to
  serve from a cache. CachedStore decorates any amortization.Store:

    Save  -> inner.Save, then write-through
    Get   -> cache hit, or inner.Get then populate
    List  -> inner.List (not cached)
    Reset -> inner reset, then flush every cached schedule

FAILURE POLICY:
  The cache is an optimization. Redis errors are logged and the call falls
  through to the inner store; they never fail a request.

KEYS:
  amortization:schedule:<id>  JSON-encoded amortization.StoredSchedule
*/
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/warp/amortization-engine/amortization"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "amortization:schedule:"

// ErrCacheMiss is returned by Cache.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the subset of Redis the store needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// =============================================================================
// REDIS CLIENT
// =============================================================================

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client *goredis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: goredis.NewClient(&goredis.Options{Addr: addr}),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// deleteBatch is the SCAN page size and the number of keys per DEL.
const deleteBatch = 100

// DeletePrefix removes every key starting with prefix. Keys are collected
// with SCAN (never KEYS, which blocks the server) and deleted only after
// the scan completes, so deletions cannot shift the cursor past live keys.
func (r *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, prefix+"*", deleteBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// =============================================================================
// CACHED STORE
// =============================================================================

// CachedStore is a read-through cache around another Store.
type CachedStore struct {
	inner  amortization.Store
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps inner. A zero ttl keeps entries until evicted.
func NewCachedStore(inner amortization.Store, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedStore) Save(ctx context.Context, s amortization.Schedule) (amortization.StoredSchedule, error) {
	stored, err := c.inner.Save(ctx, s)
	if err != nil {
		return stored, err
	}
	c.put(ctx, stored)
	return stored, nil
}

func (c *CachedStore) Get(ctx context.Context, id amortization.ScheduleID) (amortization.StoredSchedule, error) {
	key := KeyPrefix + string(id)

	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var stored amortization.StoredSchedule
		jsonErr := json.Unmarshal([]byte(raw), &stored)
		if jsonErr == nil {
			return stored, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key, "error", jsonErr)
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	stored, err := c.inner.Get(ctx, id)
	if err != nil {
		return stored, err
	}
	c.put(ctx, stored)
	return stored, nil
}

func (c *CachedStore) List(ctx context.Context) ([]amortization.StoredSchedule, error) {
	return c.inner.List(ctx)
}

// Ping checks the inner store. Redis reachability is not part of health
// because the cache is optional.
func (c *CachedStore) Ping(ctx context.Context) error {
	if p, ok := c.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Reset clears the inner store and every cached schedule.
func (c *CachedStore) Reset(ctx context.Context) error {
	if err := amortization.ResetStore(ctx, c.inner); err != nil {
		return err
	}
	if err := c.cache.DeletePrefix(ctx, KeyPrefix); err != nil {
		return fmt.Errorf("failed to flush schedule cache: %w", err)
	}
	return nil
}

func (c *CachedStore) put(ctx context.Context, stored amortization.StoredSchedule) {
	key := KeyPrefix + string(stored.ID)
	raw, err := json.Marshal(stored)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
