// Package cache is the Redis read-through cache for entity lookups.
//
// A Store with a nil client is disabled: Get always misses and writes are
// no-ops, so callers never branch on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/kproduct/config"
)

const scanBatch = 200

type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	// epoch counts invalidations; see SetSince.
	epoch atomic.Uint64
}

// New wraps client. prefix namespaces every key ("kproduct" →
// "kproduct:product:1").
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Disabled returns a Store that caches nothing.
func Disabled() *Store { return &Store{} }

// Connect builds a Store from config and verifies Redis with a ping.
// When caching is turned off it returns a disabled Store and no error.
func Connect(ctx context.Context) (*Store, error) {
	if !config.CacheEnabled() {
		return Disabled(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return Disabled(), fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(client, "kproduct", config.CacheTTL()), nil
}

func (s *Store) Enabled() bool { return s != nil && s.client != nil }

// Key joins parts under the store prefix.
func (s *Store) Key(parts ...string) string {
	if s == nil || s.prefix == "" {
		return strings.Join(parts, ":")
	}
	return s.prefix + ":" + strings.Join(parts, ":")
}

// Get unmarshals the value at key into dest. Returns true on a hit.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}

	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

// Set stores value under key for the store TTL.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Epoch returns the invalidation counter. Take it before loading a value
// that will be handed to SetSince.
func (s *Store) Epoch() uint64 {
	if !s.Enabled() {
		return 0
	}
	return s.epoch.Load()
}

// SetSince stores value like Set unless a Forget or ForgetPrefix ran after
// epoch was taken, in which case value may predate that invalidation and is
// dropped. It reports whether the value was written.
func (s *Store) SetSince(ctx context.Context, epoch uint64, key string, value interface{}) (bool, error) {
	if !s.Enabled() || s.epoch.Load() != epoch {
		return false, nil
	}
	if err := s.Set(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Forget removes keys.
func (s *Store) Forget(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	s.epoch.Add(1)
	return s.client.Del(ctx, keys...).Err()
}

// ForgetPrefix removes every key starting with prefix. Keys are deleted only
// after the scan has finished.
func (s *Store) ForgetPrefix(ctx context.Context, prefix string) error {
	if !s.Enabled() {
		return nil
	}
	s.epoch.Add(1)

	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("cache: scan %s*: %w", prefix, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	for len(keys) > 0 {
		n := min(len(keys), scanBatch)
		if err := s.client.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("cache: delete %s*: %w", prefix, err)
		}
		keys = keys[n:]
	}
	return nil
}

// Ping reports Redis reachability. A disabled store is always healthy.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	err := s.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}
