// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "CAMPUS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Check defaults
	if cfg.DBPath != "./data/campus.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/campus.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Breakpoint != 1024 {
		t.Errorf("Breakpoint = %d, want 1024", cfg.Breakpoint)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Errorf("BackendTimeout = %v, want 10s", cfg.BackendTimeout)
	}
	if cfg.ProfileCacheTTL != 0 {
		t.Errorf("ProfileCacheTTL = %v, want 0 (disabled)", cfg.ProfileCacheTTL)
	}
	if cfg.MaxMountsPerOwner != 16 {
		t.Errorf("MaxMountsPerOwner = %d, want 16", cfg.MaxMountsPerOwner)
	}
	if cfg.MountIdleTimeout != 30*time.Minute {
		t.Errorf("MountIdleTimeout = %v, want 30m", cfg.MountIdleTimeout)
	}
	if cfg.ProfileURL() != "https://backend-super-admin.vercel.app/api/superadmin" {
		t.Errorf("ProfileURL() = %q", cfg.ProfileURL())
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true, want false without CAMPUS_REDIS_URL")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	customSecret := "custom-secret-key-32-bytes-long!"
	setEnv(t, "CAMPUS_SESSION_SECRET", customSecret)
	setEnv(t, "CAMPUS_DB_PATH", "/custom/path.db")
	setEnv(t, "CAMPUS_SERVER_HOST", "0.0.0.0")
	setEnv(t, "CAMPUS_SERVER_PORT", "3000")
	setEnv(t, "CAMPUS_ENV", "production")
	setEnv(t, "CAMPUS_LOG_LEVEL", "debug")
	setEnv(t, "CAMPUS_BACKEND_URL", "http://identity.internal:9000/")
	setEnv(t, "CAMPUS_PROFILE_CACHE_TTL", "45s")
	setEnv(t, "CAMPUS_BREAKPOINT", "960")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SessionSecret != customSecret {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, customSecret)
	}
	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.ProfileURL() != "http://identity.internal:9000/api/superadmin" {
		t.Errorf("ProfileURL() = %q", cfg.ProfileURL())
	}
	if cfg.LoginURL() != "http://identity.internal:9000/api/superadmin/login" {
		t.Errorf("LoginURL() = %q", cfg.LoginURL())
	}
	if cfg.ProfileCacheTTL != 45*time.Second {
		t.Errorf("ProfileCacheTTL = %v, want 45s", cfg.ProfileCacheTTL)
	}
	if cfg.Breakpoint != 960 {
		t.Errorf("Breakpoint = %d, want 960", cfg.Breakpoint)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when CAMPUS_SESSION_SECRET is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "CAMPUS_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	for _, weak := range knownWeakSecrets {
		os.Clearenv()
		setEnv(t, "CAMPUS_SESSION_SECRET", weak)

		if _, err := Load(); err == nil {
			t.Errorf("Load() accepted known weak secret %q", weak)
		}
	}
}

func TestLoad_InvalidBackendURL(t *testing.T) {
	tests := []string{"not a url", "ftp://example.com", "/relative/path"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "CAMPUS_SESSION_SECRET", testSecret)
			setEnv(t, "CAMPUS_BACKEND_URL", raw)

			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted backend URL %q", raw)
			}
		})
	}
}

func TestLoad_InvalidBreakpoint(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CAMPUS_SESSION_SECRET", testSecret)
	setEnv(t, "CAMPUS_BREAKPOINT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a zero breakpoint")
	}
}

func TestLoad_InvalidMaxMountsPerOwner(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CAMPUS_SESSION_SECRET", testSecret)
	setEnv(t, "CAMPUS_MAX_MOUNTS_PER_OWNER", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a zero mount limit")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefgh12345678abcdefgh12345678", false},
		{"abcdefgh12345678ABCDEFGH12345678", true},
		{testSecret, true},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
