// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campus-admin/internal/identity"
	"github.com/olegiv/campus-admin/internal/logging"
	"github.com/olegiv/campus-admin/internal/middleware"
	"github.com/olegiv/campus-admin/internal/render"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/theme"
)

// sessionKeyLastUsername refills the sign-in form after a rejected attempt.
const sessionKeyLastUsername = "last_username"

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// LoginData is the view model of the sign-in page.
type LoginData struct {
	Username string
}

// EntryHandler serves the sign-in entry route.
type EntryHandler struct {
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	storage         session.Storage
	auth            Authenticator
	loginProtection *middleware.LoginProtection
	events          *logging.EventLog
}

// NewEntryHandler creates an EntryHandler. lp and events may be nil.
func NewEntryHandler(renderer *render.Renderer, sm *scs.SessionManager, auth Authenticator, lp *middleware.LoginProtection, events *logging.EventLog) *EntryHandler {
	return &EntryHandler{
		renderer:        renderer,
		sessionManager:  sm,
		storage:         session.NewDurable(sm),
		auth:            auth,
		loginProtection: lp,
		events:          events,
	}
}

// LoginForm renders the sign-in page. Holders of a stored token go
// straight to the dashboard.
func (h *EntryHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.storage.GetString(ctx, session.KeyToken) != "" {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
		return
	}

	data := LoginData{Username: h.sessionManager.PopString(ctx, sessionKeyLastUsername)}
	th := theme.Normalize(h.storage.GetString(ctx, session.KeyTheme))

	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Render(w, r, "entry/login", render.TemplateData{
		Title:      "Sign In",
		Data:       data,
		ThemeClass: th.Class(),
	}); err != nil {
		logAndInternalError(w, logRenderFailed, "template", "entry/login", "error", err)
	}
}

// Login exchanges the submitted credentials for a backend token and stores it.
func (h *EntryHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRoot) {
		return
	}
	ctx := r.Context()

	username := strings.TrimSpace(r.FormValue(fieldUsername))
	password := r.FormValue(fieldPassword)
	if username == "" || password == "" {
		h.rejectLogin(w, r, username, "Username and password are required")
		return
	}

	clientIP := middleware.GetClientIP(r)
	meta := map[string]any{"username": username, "ip": clientIP}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			h.audit(ctx, logging.LevelWarning, "sign-in attempt on locked username", meta)
			h.rejectLogin(w, r, username, fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	token, err := h.auth.Login(ctx, username, password)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidCredentials) {
			slog.Error("sign-in backend request failed", "error", err, "ip", clientIP)
			h.rejectLogin(w, r, username, "Sign-in is unavailable right now. Please try again.")
			return
		}

		h.audit(ctx, logging.LevelWarning, "sign-in rejected", meta)
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
				h.rejectLogin(w, r, username, fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)))
				return
			}
			if remaining := h.loginProtection.GetRemainingAttempts(username); remaining <= 3 {
				h.rejectLogin(w, r, username, fmt.Sprintf("Invalid username or password. %d attempts remaining.", remaining))
				return
			}
		}
		h.rejectLogin(w, r, username, "Invalid username or password")
		return
	}

	// A fresh session token on privilege change.
	if err := h.sessionManager.RenewToken(ctx); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	h.storage.Put(ctx, session.KeyToken, token)

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}
	h.audit(ctx, logging.LevelInfo, "sign-in succeeded", meta)
	slog.Info("sign-in succeeded", "username", username)

	http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
}

func (h *EntryHandler) rejectLogin(w http.ResponseWriter, r *http.Request, username, message string) {
	if username != "" {
		h.sessionManager.Put(r.Context(), sessionKeyLastUsername, username)
	}
	flashError(w, r, h.renderer, RouteRoot, message)
}

func (h *EntryHandler) audit(ctx context.Context, level, message string, meta map[string]any) {
	if h.events != nil {
		_ = h.events.Auth(ctx, level, message, meta)
	}
}

// formatDuration formats a lockout duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
