// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for session guarding,
// request protection and response hardening.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/campus-admin/internal/session"
)

// RequireToken creates middleware that requires a stored backend token.
// Requests without one are sent to entry; htmx requests get an Hx-Redirect
// so the whole page navigates instead of swapping a fragment.
func RequireToken(storage session.Storage, entry string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if storage.GetString(r.Context(), session.KeyToken) != "" {
				next.ServeHTTP(w, r)
				return
			}

			slog.Debug("request without token", "path", r.URL.Path)
			if isHTMX(r) {
				w.Header().Set("Hx-Redirect", entry)
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, entry, http.StatusSeeOther)
		})
	}
}

func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}
