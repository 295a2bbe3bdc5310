// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-admin/internal/logging"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/store"
	"github.com/olegiv/campus-admin/internal/version"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

func healthDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// serveWithToken runs h inside a loaded session, optionally holding a token.
func serveWithToken(sm *scs.SessionManager, token string, h http.HandlerFunc) http.Handler {
	return sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			sm.Put(r.Context(), session.KeyToken, token)
		}
		h(w, r)
	}))
}

func TestHealth_Public(t *testing.T) {
	h := NewHealthHandler(healthDB(t), scs.New(), nil, fixedCount(3), nil, version.Info{Version: "v1.0.0"})

	w := httptest.NewRecorder()
	serveWithToken(h.sm, "", h.Health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.NotContains(t, resp, "checks")
	assert.NotContains(t, resp, "version")
}

func TestHealth_SignedInGetsDetails(t *testing.T) {
	h := NewHealthHandler(healthDB(t), scs.New(), fakePinger{}, fixedCount(3), nil, version.Info{Version: "v1.0.0"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, RouteHealth+"?verbose=true", nil)
	serveWithToken(h.sm, "tok", h.Health).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "v1.0.0", resp["version"])
	assert.EqualValues(t, 3, resp["mounts"])
	checks, ok := resp["checks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, checks, "database")
	assert.Contains(t, checks, "cache")
	assert.Contains(t, resp, "system")
}

func TestHealth_VerboseListsRecentAuditEvents(t *testing.T) {
	db := healthDB(t)
	require.NoError(t, store.Migrate(db))
	events := logging.NewEventLog(db)
	ctx := context.Background()
	require.NoError(t, events.Auth(ctx, logging.LevelInfo, "signed in", map[string]any{"username": "alice"}))
	require.NoError(t, events.Record(ctx, logging.LevelWarning, logging.CategoryProfile, "profile fetch failed", nil))

	h := NewHealthHandler(db, scs.New(), nil, nil, events, version.Info{})

	w := httptest.NewRecorder()
	serveWithToken(h.sm, "tok", h.Health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, RouteHealth+"?verbose=true", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Len(t, status.Events, 2)
	assert.Equal(t, "profile fetch failed", status.Events[0].Message)
	assert.Equal(t, "signed in", status.Events[1].Message)

	w = httptest.NewRecorder()
	serveWithToken(h.sm, "tok", h.Health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))
	assert.NotContains(t, decode(t, w), "recent_events")

	w = httptest.NewRecorder()
	serveWithToken(h.sm, "", h.Health).ServeHTTP(w, httptest.NewRequest(http.MethodGet, RouteHealth+"?verbose=true", nil))
	assert.NotContains(t, decode(t, w), "recent_events")
}

func TestHealth_CacheDownIsDegraded(t *testing.T) {
	h := NewHealthHandler(healthDB(t), nil, fakePinger{err: errors.New("connection refused")}, nil, nil, version.Info{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode(t, w)["status"])
}

func TestHealth_WithoutLoadedSession(t *testing.T) {
	// The session manager panics outside LoadAndSave; the handler must not.
	h := NewHealthHandler(healthDB(t), scs.New(), nil, nil, nil, version.Info{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "checks")
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(healthDB(t), nil, nil, nil, nil, version.Info{})

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, RouteHealthLive, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode(t, w)["status"])
}

func TestReadiness(t *testing.T) {
	db := healthDB(t)
	h := NewHealthHandler(db, nil, nil, nil, nil, version.Info{})

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, RouteHealthReady, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode(t, w)["status"])

	require.NoError(t, db.Close())
	w = httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, RouteHealthReady, nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "not_ready", resp["status"])
	assert.NotContains(t, resp, "message")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}
