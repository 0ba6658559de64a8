// Package cache provides the read-through entity cache used by the services.
//
// Entries are JSON-encoded domain entities keyed by entity kind and id (plus a
// secondary name key for genres). Entries are always re-derivable from
// storage, so populate races are benign and last-write-wins; writes carry a
// TTL so a missed eviction heals itself.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/config"
)

// EntityCache stores JSON-encoded entities for read-through lookups.
type EntityCache interface {
	// Get loads the entry at key into dest. The boolean reports whether the
	// key was present; a miss is not an error.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Put stores value at key with the configured TTL.
	Put(ctx context.Context, key string, value interface{}) error

	// Evict removes the given keys. Missing keys are ignored.
	Evict(ctx context.Context, keys ...string) error
}

// AuthorKey returns the cache key for an author entry.
func AuthorKey(id int64) string {
	return fmt.Sprintf("author:%d", id)
}

// GenreKey returns the cache key for a genre entry.
func GenreKey(id int64) string {
	return fmt.Sprintf("genre:%d", id)
}

// GenreNameKey returns the secondary name-keyed cache key for a genre entry.
func GenreNameKey(name string) string {
	return "genre:name:" + name
}

// BookKey returns the cache key for a book entry.
func BookKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

// Compile-time interface verification.
var (
	_ EntityCache = (*Redis)(nil)
	_ EntityCache = (*Noop)(nil)
)

// Redis is a redis-backed EntityCache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis creates a redis-backed cache from the cache configuration.
func NewRedis(cfg config.CacheConfig, logger zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	return &Redis{
		client: client,
		ttl:    cfg.TTL,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Get loads the entry at key into dest.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten by the
		// next populate.
		r.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return false, nil
	}

	return true, nil
}

// Put stores value at key with the configured TTL.
func (r *Redis) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}

	return nil
}

// Evict removes the given keys.
func (r *Redis) Evict(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict cache entries: %w", err)
	}

	return nil
}

// Ping verifies the redis connection. Used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop is the cache used when caching is disabled. Every lookup misses and
// writes are discarded.
type Noop struct{}

// NewNoop creates a disabled cache.
func NewNoop() *Noop {
	return &Noop{}
}

// Get always reports a miss.
func (*Noop) Get(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

// Put discards the value.
func (*Noop) Put(context.Context, string, interface{}) error {
	return nil
}

// Evict does nothing.
func (*Noop) Evict(context.Context, ...string) error {
	return nil
}
