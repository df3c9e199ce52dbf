// Package cache implements the Redis-backed cache layer: a low-level store
// plus the report and auth facades built on top of it.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"propertyhub.app/config"
	"propertyhub.app/errors"
	"propertyhub.app/metrics"
	"propertyhub.app/pkg/logger"
)

// DefaultTTL applies when a caller does not specify an expiry and no
// configured default is available.
const DefaultTTL = 120 * time.Second

// Store provides uniform low-level access to the Redis backend with lazy
// connection establishment and typed error wrapping. Facade instances may
// share one physical backend; the connection is opened on first use so that
// constructing a facade never dials.
type Store struct {
	client     *redis.Client
	log        *logger.Logger
	defaultTTL time.Duration

	mu        sync.Mutex
	connected bool

	metricsMu sync.Mutex
	metrics   map[string]*metrics.CacheMetrics
}

// NewStore creates a store around the given Redis configuration. No
// connection is made until the first operation. cacheCfg supplies the
// default TTL for writes that don't name one; a nil cacheCfg falls back to
// DefaultTTL.
func NewStore(cfg *config.RedisConfig, cacheCfg *config.CacheConfig, log *logger.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	defaultTTL := DefaultTTL
	if cacheCfg != nil && cacheCfg.DefaultTTLSeconds > 0 {
		defaultTTL = time.Duration(cacheCfg.DefaultTTLSeconds) * time.Second
	}

	return &Store{
		client:     client,
		log:        log.ForComponent("cacheStore"),
		defaultTTL: defaultTTL,
		metrics:    make(map[string]*metrics.CacheMetrics),
	}, nil
}

// metricsFor returns the recorder for the key's namespace, so report and
// session traffic report separate hit ratios. The namespace is the key's
// kind prefix; keys without one (the auth token bucket) form their own.
func (s *Store) metricsFor(key string) *metrics.CacheMetrics {
	kind := key
	if i := strings.IndexByte(key, ':'); i > 0 {
		kind = key[:i]
	}

	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()

	m, ok := s.metrics[kind]
	if !ok {
		m = metrics.NewCacheMetrics(kind)
		s.metrics[kind] = m
	}
	return m
}

// Stats reports hit/miss counters per key namespace.
func (s *Store) Stats() map[string]map[string]interface{} {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()

	out := make(map[string]map[string]interface{}, len(s.metrics))
	for kind, m := range s.metrics {
		out[kind] = m.GetStats()
	}
	return out
}

// ensureConnected verifies the backend is reachable before the first
// operation. The mutex makes the connect single-flight: concurrent first
// callers wait for one ping instead of racing to open multiple physical
// connections. A failed ping leaves connected false so the next caller
// retries.
func (s *Store) ensureConnected(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.Error("cache backend unreachable", "error", err)
		return errors.NewCacheError("failed to connect to cache backend", err)
	}

	s.connected = true
	s.log.Info("cache backend connected", "addr", s.client.Options().Addr)
	return nil
}

// SetString writes value under key with the given TTL, overwriting any
// existing value. A zero ttl falls back to DefaultTTL.
func (s *Store) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	start := time.Now()
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.log.Error("cache set failed", "error", err, "key", key)
		return errors.NewCacheError("cache set operation failed", err)
	}
	s.metricsFor(key).RecordOperation("set", time.Since(start))

	return nil
}

// GetString reads the value stored under key. A missing key is a cache
// miss, not an error: the returned bool reports whether the key was found.
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.NewValidationError("cache key cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return "", false, err
	}

	start := time.Now()
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			s.metricsFor(key).RecordMiss()
			return "", false, nil
		}
		s.log.Error("cache get failed", "error", err, "key", key)
		return "", false, errors.NewCacheError("cache get operation failed", err)
	}

	m := s.metricsFor(key)
	m.RecordHit()
	m.RecordOperation("get", time.Since(start))
	return val, true, nil
}

// Delete removes key. Deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("cache delete failed", "error", err, "key", key)
		return errors.NewCacheError("cache delete operation failed", err)
	}

	return nil
}

// SetHashField sets field within the hash stored at hashKey.
func (s *Store) SetHashField(ctx context.Context, hashKey, field, value string) error {
	if hashKey == "" || field == "" {
		return errors.NewValidationError("hash key and field cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	if err := s.client.HSet(ctx, hashKey, field, value).Err(); err != nil {
		s.log.Error("cache hash set failed", "error", err, "key", hashKey, "field", field)
		return errors.NewCacheError("cache hash set operation failed", err)
	}

	return nil
}

// GetHashField reads field from the hash stored at hashKey. An absent field
// is a miss, reported through the bool.
func (s *Store) GetHashField(ctx context.Context, hashKey, field string) (string, bool, error) {
	if hashKey == "" || field == "" {
		return "", false, errors.NewValidationError("hash key and field cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return "", false, err
	}

	val, err := s.client.HGet(ctx, hashKey, field).Result()
	if err != nil {
		if err == redis.Nil {
			s.metricsFor(hashKey).RecordMiss()
			return "", false, nil
		}
		s.log.Error("cache hash get failed", "error", err, "key", hashKey, "field", field)
		return "", false, errors.NewCacheError("cache hash get operation failed", err)
	}

	s.metricsFor(hashKey).RecordHit()
	return val, true, nil
}

// DeleteHashField removes field from the hash stored at hashKey. Removing
// an absent field succeeds.
func (s *Store) DeleteHashField(ctx context.Context, hashKey, field string) error {
	if hashKey == "" || field == "" {
		return errors.NewValidationError("hash key and field cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	if err := s.client.HDel(ctx, hashKey, field).Err(); err != nil {
		s.log.Error("cache hash delete failed", "error", err, "key", hashKey, "field", field)
		return errors.NewCacheError("cache hash delete operation failed", err)
	}

	return nil
}

// AppendToList pushes value onto the tail of the list at key and refreshes
// the list's TTL. The TTL refresh on every append keeps an actively growing
// list alive while still bounding abandoned ones.
func (s *Store) AppendToList(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	if err := s.client.RPush(ctx, key, value).Err(); err != nil {
		s.log.Error("cache list push failed", "error", err, "key", key)
		return errors.NewCacheError("cache list push operation failed", err)
	}

	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		s.log.Error("cache list expire failed", "error", err, "key", key)
		return errors.NewCacheError("cache list expire operation failed", err)
	}

	return nil
}

// GetListRange returns the elements of the list at key between start and
// stop, both inclusive, in insertion order. A missing key yields an empty
// slice.
func (s *Store) GetListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	vals, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		s.log.Error("cache list range failed", "error", err, "key", key)
		return nil, errors.NewCacheError("cache list range operation failed", err)
	}

	return vals, nil
}

// Ping checks whether the backend connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.NewCacheError("cache ping failed", err)
	}
	return nil
}

// Close closes the underlying client connection.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return errors.NewCacheError("failed to close cache connection", err)
	}
	return nil
}
