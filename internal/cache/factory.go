// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backend names reported by Config.Backend and Result.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when set.
	// Example: redis://localhost:6379/0
	RedisURL string

	// FallbackToMemory builds a memory cache when Redis is unreachable.
	FallbackToMemory bool

	// Prefix is the key prefix for Redis.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited).
	MaxSize int

	// CleanupInterval is the interval for expired entry cleanup.
	CleanupInterval time.Duration
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		FallbackToMemory: true,
		Prefix:           "campus:",
		DefaultTTL:       30 * time.Second,
		MaxSize:          10000,
		CleanupInterval:  time.Minute,
	}
}

// Backend returns the backend requested by this configuration.
func (c Config) Backend() string {
	if c.RedisURL != "" {
		return BackendRedis
	}
	return BackendMemory
}

// Result describes the cache NewCacheWithInfo built.
type Result struct {
	Cache      Cacher
	Backend    string
	IsFallback bool
}

// NewCache creates a Redis cache when RedisURL is set, otherwise an
// in-memory cache.
func NewCache(cfg Config) (Cacher, error) {
	res, err := NewCacheWithInfo(cfg)
	if err != nil {
		return nil, err
	}
	return res.Cache, nil
}

// NewCacheWithInfo is NewCache that also reports which backend was built.
func NewCacheWithInfo(cfg Config) (Result, error) {
	if cfg.Backend() == BackendRedis {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			return Result{Cache: rc, Backend: BackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return Result{}, fmt.Errorf("creating redis cache at %s: %w", maskRedisURL(cfg.RedisURL), err)
		}
		slog.Warn("redis unavailable, using memory cache",
			"url", maskRedisURL(cfg.RedisURL), "error", err)
		return Result{Cache: newMemoryFromConfig(cfg), Backend: BackendMemory, IsFallback: true}, nil
	}

	return Result{Cache: newMemoryFromConfig(cfg), Backend: BackendMemory}, nil
}

func newMemoryFromConfig(cfg Config) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// maskRedisURL hides credentials in a Redis URL for logging.
func maskRedisURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return raw
	}
	return scheme + "://***" + rest[at:]
}
