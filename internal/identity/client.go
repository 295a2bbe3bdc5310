// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package identity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/campus-admin/internal/cache"
)

const (
	defaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a backend response is read.
	maxBodySize = 1 << 20

	cacheKeyPrefix = "profile:"
)

// Config configures a Client.
type Config struct {
	ProfileURL string
	LoginURL   string
	Timeout    time.Duration

	// Cache stores successful profiles per token. Nil or CacheTTL 0 disables it.
	Cache    cache.Cacher
	CacheTTL time.Duration

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the backend identity API.
type Client struct {
	profileURL string
	loginURL   string
	httpClient *http.Client
	profiles   *cache.TypedCache[Profile]
	group      singleflight.Group
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		profileURL: cfg.ProfileURL,
		loginURL:   cfg.LoginURL,
		httpClient: hc,
		logger:     logger,
	}
	if cfg.Cache != nil && cfg.CacheTTL > 0 {
		c.profiles = cache.NewTypedCache[Profile](cfg.Cache, cfg.CacheTTL)
	}
	return c
}

// FetchProfile returns the profile belonging to token.
// Concurrent calls for the same token share a single backend request.
// When a profile cache is configured a cached profile is returned without
// a request; RefreshProfile always asks the backend.
func (c *Client) FetchProfile(ctx context.Context, token string) (Profile, error) {
	if c.profiles == nil {
		return c.fetchShared(ctx, token)
	}

	p, err := c.profiles.GetOrSet(ctx, cacheKey(token), func() (*Profile, error) {
		p, err := c.fetchShared(ctx, token)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return Profile{}, err
	}
	return *p, nil
}

// RefreshProfile fetches the profile from the backend, bypassing the cache.
// A successful result replaces the cached entry; a rejected token drops it.
func (c *Client) RefreshProfile(ctx context.Context, token string) (Profile, error) {
	p, err := c.fetchShared(ctx, token)
	switch {
	case err == nil:
		if c.profiles != nil {
			if err := c.profiles.Set(ctx, cacheKey(token), &p); err != nil {
				c.logger.Warn("failed to cache profile", "error", err)
			}
		}
	case errors.Is(err, ErrUnauthorized):
		c.Forget(ctx, token)
	}
	return p, err
}

func (c *Client) fetchShared(ctx context.Context, token string) (Profile, error) {
	key := cacheKey(token)
	v, err, shared := c.group.Do(key, func() (any, error) {
		// The shared request must not die with the first caller's context.
		return c.requestProfile(context.WithoutCancel(ctx), token)
	})
	if shared {
		c.logger.Debug("profile request shared", "key", key[:len(cacheKeyPrefix)+8])
	}
	if err != nil {
		return Profile{}, err
	}
	return v.(Profile), nil
}

// Forget drops the cached profile for token.
func (c *Client) Forget(ctx context.Context, token string) {
	if c.profiles == nil {
		return
	}
	if err := c.profiles.Delete(ctx, cacheKey(token)); err != nil {
		c.logger.Warn("failed to drop cached profile", "error", err)
	}
}

func (c *Client) requestProfile(ctx context.Context, token string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return Profile{}, &FetchError{Op: "profile", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, &FetchError{Op: "profile", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Profile{}, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Profile{}, &FetchError{Op: "profile", StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var p Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&p); err != nil {
		return Profile{}, &FetchError{Op: "profile", StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding profile: %w", err)}
	}
	return p, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", &FetchError{Op: "login", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", &FetchError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{Op: "login", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return "", ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return "", &FetchError{Op: "login", StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var lr loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&lr); err != nil {
		return "", &FetchError{Op: "login", StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding login response: %w", err)}
	}
	if lr.Token == "" {
		return "", &FetchError{Op: "login", StatusCode: resp.StatusCode, Err: errors.New("empty token")}
	}
	return lr.Token, nil
}

// cacheKey hashes the token so raw credentials never reach the cache.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
