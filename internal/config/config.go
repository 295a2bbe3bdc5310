// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CAMPUS_DB_PATH" envDefault:"./data/campus.db"`
	SessionSecret string `env:"CAMPUS_SESSION_SECRET,required"`
	ServerHost    string `env:"CAMPUS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CAMPUS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CAMPUS_ENV" envDefault:"development"`
	LogLevel      string `env:"CAMPUS_LOG_LEVEL" envDefault:"info"`

	// Backend identity API
	BackendURL      string        `env:"CAMPUS_BACKEND_URL" envDefault:"https://backend-super-admin.vercel.app"`
	ProfilePath     string        `env:"CAMPUS_PROFILE_PATH" envDefault:"/api/superadmin"`
	LoginPath       string        `env:"CAMPUS_LOGIN_PATH" envDefault:"/api/superadmin/login"`
	BackendTimeout  time.Duration `env:"CAMPUS_BACKEND_TIMEOUT" envDefault:"10s"`
	ProfileCacheTTL time.Duration `env:"CAMPUS_PROFILE_CACHE_TTL" envDefault:"0s"` // 0 disables the profile cache

	// Shell behaviour
	SessionLifetime  time.Duration `env:"CAMPUS_SESSION_LIFETIME" envDefault:"720h"`
	MountIdleTimeout  time.Duration `env:"CAMPUS_MOUNT_IDLE_TIMEOUT" envDefault:"30m"`
	MaxMountsPerOwner int           `env:"CAMPUS_MAX_MOUNTS_PER_OWNER" envDefault:"16"`
	Breakpoint        int           `env:"CAMPUS_BREAKPOINT" envDefault:"1024"`

	// Cache configuration
	RedisURL     string `env:"CAMPUS_REDIS_URL"`                          // Optional Redis URL for the shared profile cache
	CachePrefix  string `env:"CAMPUS_CACHE_PREFIX" envDefault:"campus:"` // Redis key prefix
	CacheMaxSize int    `env:"CAMPUS_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Audit log retention
	EventRetention time.Duration `env:"CAMPUS_EVENT_RETENTION" envDefault:"720h"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// ProfileURL returns the absolute URL of the current-admin profile endpoint.
func (c Config) ProfileURL() string {
	return strings.TrimRight(c.BackendURL, "/") + c.ProfilePath
}

// LoginURL returns the absolute URL of the backend login endpoint.
func (c Config) LoginURL() string {
	return strings.TrimRight(c.BackendURL, "/") + c.LoginPath
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CAMPUS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("CAMPUS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CAMPUS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if err := cfg.validateBackend(); err != nil {
		return nil, err
	}

	if cfg.Breakpoint <= 0 {
		return nil, fmt.Errorf("CAMPUS_BREAKPOINT must be positive, got %d", cfg.Breakpoint)
	}
	if cfg.MaxMountsPerOwner <= 0 {
		return nil, fmt.Errorf("CAMPUS_MAX_MOUNTS_PER_OWNER must be positive, got %d", cfg.MaxMountsPerOwner)
	}
	if cfg.ProfileCacheTTL < 0 {
		return nil, fmt.Errorf("CAMPUS_PROFILE_CACHE_TTL must not be negative, got %s", cfg.ProfileCacheTTL)
	}

	return cfg, nil
}

// validateBackend checks that the backend URL is an absolute http(s) URL.
func (c *Config) validateBackend() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("parsing CAMPUS_BACKEND_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CAMPUS_BACKEND_URL must be an absolute http(s) URL, got %q", c.BackendURL)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
