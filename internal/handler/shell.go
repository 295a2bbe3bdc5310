// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-admin/internal/layout"
	"github.com/olegiv/campus-admin/internal/logging"
	"github.com/olegiv/campus-admin/internal/render"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/shell"
	"github.com/olegiv/campus-admin/internal/theme"
	adminviews "github.com/olegiv/campus-admin/internal/views/admin"
)

const (
	shellTemplate = "shell/page"
	shellFragment = "fragment"
)

// ShellHandler serves dashboard pages and the events of their mounts.
//
// A page load creates a mount. htmx events post to the mount and receive
// the re-rendered shell; plain form posts are answered with a redirect to
// the page carrying the mount id, which re-attaches on the next GET.
type ShellHandler struct {
	shell    *shell.Shell
	renderer *render.Renderer
	storage  session.Storage
	events   *logging.EventLog
	logger   *slog.Logger
}

// NewShellHandler creates a ShellHandler. events may be nil.
func NewShellHandler(sh *shell.Shell, renderer *render.Renderer, sm *scs.SessionManager, events *logging.EventLog, logger *slog.Logger) *ShellHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShellHandler{
		shell:    sh,
		renderer: renderer,
		storage:  session.NewDurable(sm),
		events:   events,
		logger:   logger,
	}
}

// Index redirects the dashboard base to its landing view.
func (h *ShellHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
}

// Page renders a dashboard view. A ?mount= id owned by the caller and
// pointing at the same path re-attaches to that mount; otherwise a new
// mount is created for the reported viewport width.
func (h *ShellHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := h.storage.GetString(ctx, session.KeyToken)
	path := r.URL.Path

	if id := r.URL.Query().Get(fieldMount); id != "" && owner != "" {
		if m, err := h.shell.Lookup(id, owner); err == nil && m.Path() == path {
			h.renderPage(w, r, m)
			return
		}
	}

	m := h.shell.Mount(ctx, owner, path, layout.WidthFromRequest(r))
	h.renderPage(w, r, m)
}

func (h *ShellHandler) renderPage(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	st := m.Snapshot()
	if st.Redirect != "" {
		http.Redirect(w, r, st.Redirect, http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	if st.NotFound() {
		status = http.StatusNotFound
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.RenderStatus(w, r, shellTemplate, status, templateData(st)); err != nil {
		logAndInternalError(w, logRenderFailed, "template", shellTemplate, "error", err)
	}
}

func templateData(st shell.State) render.TemplateData {
	return render.TemplateData{
		Title:      st.View.Title,
		Data:       adminviews.NewPageContext(st),
		ThemeClass: st.ThemeClass,
	}
}

// mountEvent handles one event of a looked-up mount.
type mountEvent func(w http.ResponseWriter, r *http.Request, m *shell.Mount)

// withMount resolves the {mount} URL parameter against the caller's token.
// Unknown or foreign mounts reload the issuing page, which mounts afresh.
func (h *ShellHandler) withMount(fn mountEvent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := h.storage.GetString(r.Context(), session.KeyToken)
		m, err := h.shell.Lookup(chi.URLParam(r, fieldMount), owner)
		if err != nil {
			target := currentPagePath(r, RouteDashboard)
			h.logger.Debug("event for unknown mount, reloading", "path", r.URL.Path, "target", target)
			if IsHTMX(r) {
				SetHXRedirect(w, target)
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		fn(w, r, m)
	}
}

// respond answers an event with the re-rendered shell, or with the
// mount's redirect when it has one.
func (h *ShellHandler) respond(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	st := m.Snapshot()

	if !IsHTMX(r) {
		target := st.Redirect
		if target == "" {
			target = mountURL(st)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	if st.Redirect != "" {
		SetHXRedirect(w, st.Redirect)
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.RenderFragment(w, shellTemplate, shellFragment, http.StatusOK, templateData(st)); err != nil {
		logAndInternalError(w, logRenderFailed, "template", shellTemplate, "block", shellFragment, "error", err)
	}
}

func mountURL(st shell.State) string {
	return st.Path + "?" + fieldMount + "=" + url.QueryEscape(st.ID)
}

// Toggle inverts the sidebar.
func (h *ShellHandler) Toggle(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	m.Toggle()
	h.respond(w, r, m)
}

// Resize records a new viewport width. Widths that do not cross the
// breakpoint leave the shell untouched and get 204.
func (h *ShellHandler) Resize(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	width, ok := layout.ParseWidth(r.FormValue(layout.ViewportField))
	if !ok {
		eventError(w, r, "Invalid viewport width", http.StatusBadRequest)
		return
	}
	if !m.Resize(width) && IsHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.respond(w, r, m)
}

// Navigate switches the mount to another view and pushes its URL.
func (h *ShellHandler) Navigate(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	path := r.FormValue(fieldPath)
	if err := m.Navigate(path); err != nil {
		if errors.Is(err, shell.ErrUnknownRoute) {
			eventError(w, r, "Unknown route", http.StatusBadRequest)
			return
		}
		logAndInternalError(w, "navigation failed", "path", path, "error", err)
		return
	}
	if IsHTMX(r) {
		SetHXPushURL(w, m.Path())
	}
	h.respond(w, r, m)
}

// Theme applies and persists a theme.
func (h *ShellHandler) Theme(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	name := r.FormValue(fieldTheme)
	if err := m.SetTheme(r.Context(), name); err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			h.logger.Warn("unknown theme requested", "theme", name, "mount", m.ID())
			eventError(w, r, "Unknown theme", http.StatusBadRequest)
			return
		}
		logAndInternalError(w, "theme change failed", "error", err)
		return
	}
	h.respond(w, r, m)
}

// Refresh re-runs the profile fetch.
func (h *ShellHandler) Refresh(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	m.Refresh(r.Context())
	h.respond(w, r, m)
}

// Logout opens the confirmation modal.
func (h *ShellHandler) Logout(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	m.RequestLogout()
	h.respond(w, r, m)
}

// LogoutCancel closes the confirmation modal.
func (h *ShellHandler) LogoutCancel(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	m.CancelLogout()
	h.respond(w, r, m)
}

// LogoutConfirm clears the stored credentials and leaves the dashboard.
func (h *ShellHandler) LogoutConfirm(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	ctx := r.Context()
	if err := m.ConfirmLogout(ctx); err != nil {
		if errors.Is(err, shell.ErrLogoutNotRequested) {
			eventError(w, r, "Logout was not requested", http.StatusConflict)
			return
		}
		logAndInternalError(w, "logout failed", "error", err)
		return
	}

	if h.events != nil {
		_ = h.events.Auth(ctx, logging.LevelInfo, "logout confirmed", map[string]any{"mount": m.ID()})
	}
	h.logger.Info("logout confirmed", "mount", m.ID())
	h.respond(w, r, m)
}

// Unmount releases a mount when its page goes away.
func (h *ShellHandler) Unmount(w http.ResponseWriter, r *http.Request, m *shell.Mount) {
	h.shell.Unmount(m)
	w.WriteHeader(http.StatusNoContent)
}
