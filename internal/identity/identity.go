// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package identity talks to the backend identity API: it exchanges
// credentials for a session token and fetches the current admin's profile.
package identity

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrUnauthorized is returned when the backend rejects the token (401 or 403).
	ErrUnauthorized = errors.New("identity: token rejected")

	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// FetchError describes any backend failure that is not an authorization
// failure: transport errors, unexpected statuses and undecodable bodies.
type FetchError struct {
	Op         string // "profile" or "login"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("identity: %s request failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("identity: %s request failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Profile is the current admin as reported by the backend.
type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

var upper = cases.Upper(language.Und)

// Initial returns the upper-cased first letter of the username for the avatar.
func (p Profile) Initial() string {
	r, size := utf8.DecodeRuneInString(p.Username)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return upper.String(string(r))
}
