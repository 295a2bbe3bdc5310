// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{name: "simple remote addr", remoteAddr: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", want: "192.168.1.1"},
		{name: "X-Forwarded-For single", remoteAddr: "127.0.0.1:8080", xForwarded: "10.0.0.1", want: "10.0.0.1"},
		{name: "X-Forwarded-For multiple", remoteAddr: "127.0.0.1:8080", xForwarded: "10.0.0.1, 10.0.0.2, 10.0.0.3", want: "10.0.0.1"},
		{name: "X-Real-IP", remoteAddr: "127.0.0.1:8080", xRealIP: "10.0.0.5", want: "10.0.0.5"},
		{name: "X-Forwarded-For wins over X-Real-IP", remoteAddr: "127.0.0.1:8080", xForwarded: "10.0.0.1", xRealIP: "10.0.0.5", want: "10.0.0.1"},
		{name: "X-Forwarded-For with spaces", remoteAddr: "127.0.0.1:8080", xForwarded: "  10.0.0.1  ", want: "10.0.0.1"},
		{name: "IPv6 remote addr", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGlobalRateLimiter_HTMLMiddleware(t *testing.T) {
	rl := NewGlobalRateLimiter(0.001, 3)
	wrapped := rl.HTMLMiddleware()(okHandler())

	get := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 3; i++ {
		if rr := get("198.51.100.1:1000"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rr.Code)
		}
	}

	rr := get("198.51.100.1:1000")
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}

	// Another client has its own budget.
	if rr := get("198.51.100.2:1000"); rr.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rr.Code)
	}
}

func TestLimiterCache_ClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	for _, k := range []string{"a", "b", "c"} {
		lc.get(k)
	}

	if lc.clearIfExceeds(5) {
		t.Error("clearIfExceeds(5) cleared a cache of 3")
	}
	if !lc.clearIfExceeds(2) {
		t.Error("clearIfExceeds(2) did not clear a cache of 3")
	}
	if n := lc.len(); n != 0 {
		t.Errorf("len() = %d after clear, want 0", n)
	}
}

func TestLimiterCache_ReusesLimiter(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	if lc.get(7) != lc.get(7) {
		t.Error("get returned different limiters for the same key")
	}
}
