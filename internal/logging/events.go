// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/campus-admin/internal/store"
)

// EventLog writes explicit audit entries such as sign-ins and logouts.
type EventLog struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventLog creates an EventLog on db.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{queries: store.New(db), now: time.Now}
}

// Record stores one audit entry. metadata may be nil.
func (l *EventLog) Record(ctx context.Context, level, category, message string, metadata map[string]any) error {
	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := l.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		Metadata:  metadataJSON,
		CreatedAt: l.now(),
	})
	if err != nil {
		slog.Debug("failed to record audit event", "message", message, "error", err)
	}
	return err
}

// Auth stores an authentication audit entry.
func (l *EventLog) Auth(ctx context.Context, level, message string, metadata map[string]any) error {
	return l.Record(ctx, level, CategoryAuth, message, metadata)
}

// Recent returns up to limit entries, newest first.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]store.Event, error) {
	return l.queries.ListRecentEvents(ctx, limit)
}

// Prune removes entries older than retention and reports how many were removed.
func (l *EventLog) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return l.queries.DeleteEventsBefore(ctx, l.now().Add(-retention))
}
