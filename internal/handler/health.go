// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/store"
	"github.com/olegiv/campus-admin/internal/version"
)

const (
	// healthCheckTimeout bounds each dependency probe.
	healthCheckTimeout = 2 * time.Second

	// recentEventsLimit is how many audit entries the verbose report lists.
	recentEventsLimit = 10
)

// Pinger is implemented by cache backends with a remote connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MountCounter reports the number of live mounts.
type MountCounter interface {
	Len() int
}

// AuditLog lists recent audit entries.
type AuditLog interface {
	Recent(ctx context.Context, limit int) ([]store.Event, error)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	sm        *scs.SessionManager
	cache     any
	mounts    MountCounter
	events    AuditLog
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler. cache is probed only when
// it implements Pinger; sm, mounts and events may be nil.
func NewHealthHandler(db *sql.DB, sm *scs.SessionManager, cache any, mounts MountCounter, events AuditLog, info version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		sm:        sm,
		cache:     cache,
		mounts:    mounts,
		events:    events,
		version:   info,
		startTime: time.Now(),
	}
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health report for signed-in callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Mounts    int              `json:"mounts"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
	Events    []AuditEntry     `json:"recent_events,omitempty"`
}

// AuditEntry is an audit log row in the verbose report.
type AuditEntry struct {
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health requests.
// Anonymous callers get the status only; signed-in callers get the checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{"database": h.checkDatabase(r.Context())}
	if c, ok := h.checkCache(r.Context()); ok {
		checks["cache"] = c
	}

	overallStatus := "healthy"
	for _, c := range checks {
		if c.Status != "healthy" {
			overallStatus = "degraded"
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !h.isAuthenticated(r) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overallStatus})
		return
	}

	status := HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Checks:    checks,
	}
	if h.mounts != nil {
		status.Mounts = h.mounts.Len()
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = getSystemInfo()
		status.Events = h.recentEvents(r.Context())
	}

	_ = json.NewEncoder(w).Encode(status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// Readiness handles GET /health/ready - checks if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())

	w.Header().Set("Content-Type", "application/json")

	if dbCheck.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
		})
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	resp := map[string]string{
		"status": "not_ready",
	}
	// Only include error details for signed-in callers
	if h.isAuthenticated(r) {
		resp["message"] = dbCheck.Message
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// isAuthenticated reports whether the caller's session holds a backend token.
// Returns false (without panicking) if session data is not loaded into context.
func (h *HealthHandler) isAuthenticated(r *http.Request) (authenticated bool) {
	if h.sm == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			authenticated = false
		}
	}()
	return h.sm.GetString(r.Context(), session.KeyToken) != ""
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "Connected",
		Latency: latency.String(),
	}
}

// checkCache pings a remote profile cache. The second result is false for
// in-process caches, which have nothing to probe.
func (h *HealthHandler) checkCache(ctx context.Context) (Check, bool) {
	p, ok := h.cache.(Pinger)
	if !ok {
		return Check{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency.String()}, true
	}
	return Check{Status: "healthy", Message: "Connected", Latency: latency.String()}, true
}

// recentEvents returns the newest audit entries, or nil when none are available.
func (h *HealthHandler) recentEvents(ctx context.Context) []AuditEntry {
	if h.events == nil {
		return nil
	}
	rows, err := h.events.Recent(ctx, recentEventsLimit)
	if err != nil {
		slog.Warn("failed to list recent audit events", "error", err)
		return nil
	}
	out := make([]AuditEntry, 0, len(rows))
	for _, e := range rows {
		out = append(out, AuditEntry{Level: e.Level, Category: e.Category, Message: e.Message, CreatedAt: e.CreatedAt})
	}
	return out
}

// getSystemInfo returns system-level metrics.
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
