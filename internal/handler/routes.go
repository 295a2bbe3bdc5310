// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/campus-admin/internal/middleware"
	"github.com/olegiv/campus-admin/internal/session"
)

// staticMaxAge is the Cache-Control max-age of embedded assets (1 day).
const staticMaxAge = 86400

// Handlers groups the route handlers of the application.
type Handlers struct {
	Entry  *EntryHandler
	Shell  *ShellHandler
	Health *HealthHandler
}

// RouteOptions holds the route-scoped middleware and assets.
type RouteOptions struct {
	// Storage decides whether a request carries a backend token.
	Storage session.Storage
	// CSRF guards every state-changing route. Nil disables it (tests).
	CSRF func(http.Handler) http.Handler
	// LoginProtection rate-limits sign-in posts. May be nil.
	LoginProtection *middleware.LoginProtection
	// PublicLimiter rate-limits the entry routes. May be nil.
	PublicLimiter *middleware.GlobalRateLimiter
	// Static serves /static/*. May be nil.
	Static fs.FS
}

// RegisterRoutes mounts the entry, dashboard and health routes on r.
func RegisterRoutes(r chi.Router, h Handlers, opts RouteOptions) {
	csrf := opts.CSRF
	if csrf == nil {
		csrf = passthrough
	}

	if h.Health != nil {
		r.Get(RouteHealth, h.Health.Health)
		r.Get(RouteHealthLive, h.Health.Liveness)
		r.Get(RouteHealthReady, h.Health.Readiness)
	}

	if opts.Static != nil {
		r.Handle(RouteStatic, staticCache(staticMaxAge)(http.StripPrefix("/static/", http.FileServer(http.FS(opts.Static)))))
	}

	// Entry routes (public, with CSRF and rate limiting)
	r.Group(func(r chi.Router) {
		if opts.PublicLimiter != nil {
			r.Use(opts.PublicLimiter.HTMLMiddleware())
		}
		r.Use(csrf)
		r.Get(RouteRoot, h.Entry.LoginForm)
		if opts.LoginProtection != nil {
			r.With(opts.LoginProtection.Middleware()).Post(RouteLogin, h.Entry.Login)
		} else {
			r.Post(RouteLogin, h.Entry.Login)
		}
	})

	// Dashboard routes (token required, with CSRF)
	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.RequireToken(opts.Storage, RouteRoot))

		r.Get(RouteSuperAdmin, h.Shell.Index)

		r.Route(RouteUIMount, func(r chi.Router) {
			s := h.Shell
			r.Post(RouteEventToggle, s.withMount(s.Toggle))
			r.Post(RouteEventResize, s.withMount(s.Resize))
			r.Post(RouteEventNavigate, s.withMount(s.Navigate))
			r.Post(RouteEventTheme, s.withMount(s.Theme))
			r.Post(RouteEventRefresh, s.withMount(s.Refresh))
			r.Post(RouteEventLogout, s.withMount(s.Logout))
			r.Post(RouteEventLogoutConfirm, s.withMount(s.LogoutConfirm))
			r.Post(RouteEventLogoutCancel, s.withMount(s.LogoutCancel))
			r.Post(RouteEventUnmount, s.withMount(s.Unmount))
		})

		r.Get(RouteSuperAdminViews, h.Shell.Page)
	})
}

func passthrough(next http.Handler) http.Handler { return next }

// staticCache sets a public Cache-Control header on asset responses.
func staticCache(maxAge int) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
