/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based cache for generated guides.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/slotguide/internal/telemetry"
)

// DefaultGuideTTL keeps a day's guide a little past the end of that day.
const DefaultGuideTTL = 26 * time.Hour

// Key prefixes for Redis cache
const (
	keyPrefix = "slotguide:cache:"
	KeyGuide  = keyPrefix + "guide:" // + YYYY-MM-DD
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GuideTTL time.Duration

	// DisableOnError stops using Redis after the first failed operation.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		GuideTTL:       DefaultGuideTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. A nil *Cache
// behaves like a disabled one.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance. An unreachable Redis yields a disabled
// cache, not an error.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	if cfg.GuideTTL <= 0 {
		cfg.GuideTTL = DefaultGuideTTL
	}
	logger = logger.With().Str("component", "cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		_ = client.Close()
		return &Cache{logger: logger, config: cfg, disabled: true}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: logger, config: cfg}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	telemetry.CacheOperationsTotal.WithLabelValues("error").Inc()
	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		telemetry.CacheOperationsTotal.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		telemetry.CacheOperationsTotal.WithLabelValues("miss").Inc()
		return false, nil
	}

	telemetry.CacheOperationsTotal.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}
	telemetry.CacheOperationsTotal.WithLabelValues("set").Inc()
	return nil
}

func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}
	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// SCAN rather than KEYS so a large keyspace does not block Redis.
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// GuideKey returns the cache key for a target date (YYYY-MM-DD).
func GuideKey(date string) string {
	return KeyGuide + date
}

// GetGuide loads the cached guide for date into dest.
func (c *Cache) GetGuide(ctx context.Context, date string, dest any) bool {
	found, err := c.get(ctx, GuideKey(date), dest)
	if err != nil || !found {
		return false
	}
	c.logger.Debug().Str("date", date).Msg("guide cache hit")
	return true
}

// SetGuide caches guide for date.
func (c *Cache) SetGuide(ctx context.Context, date string, guide any) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Debug().Str("date", date).Msg("caching guide")
	return c.set(ctx, GuideKey(date), guide, c.config.GuideTTL)
}

// InvalidateGuide removes the cached guide for date.
func (c *Cache) InvalidateGuide(ctx context.Context, date string) error {
	return c.delete(ctx, GuideKey(date))
}

// FlushAll removes every cached guide.
func (c *Cache) FlushAll(ctx context.Context) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, keyPrefix+"*")
}
