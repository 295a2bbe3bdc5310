// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/campus-admin/internal/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequireToken_WithToken(t *testing.T) {
	storage := session.NewMemory()
	storage.Put(context.Background(), session.KeyToken, "t0k")

	wrapped := RequireToken(storage, "/")(okHandler())

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/super-admin/ui/abc/toggle", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("got %d %q, want 200 ok", rr.Code, rr.Body.String())
	}
}

func TestRequireToken_RedirectsWithoutToken(t *testing.T) {
	wrapped := RequireToken(session.NewMemory(), "/")(okHandler())

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/super-admin/ui/abc/toggle", nil))

	if rr.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestRequireToken_HTMXRedirect(t *testing.T) {
	wrapped := RequireToken(session.NewMemory(), "/")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/super-admin/ui/abc/toggle", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Hx-Redirect"); got != "/" {
		t.Errorf("Hx-Redirect = %q, want /", got)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}
}
