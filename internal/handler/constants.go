// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the entry route (sign-in form).
	RouteRoot = "/"
	// RouteLogin receives the sign-in form.
	RouteLogin = "/login"

	// RouteHealth is the health report route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe route.
	RouteHealthLive = "/health/live"
	// RouteHealthReady is the readiness probe route.
	RouteHealthReady = "/health/ready"

	// RouteStatic serves embedded static assets.
	RouteStatic = "/static/*"

	// RouteSuperAdmin is the dashboard base path.
	RouteSuperAdmin = "/super-admin"
	// RouteDashboard is the landing view after sign-in.
	RouteDashboard = "/super-admin/dashboard"
	// RouteSuperAdminViews matches every dashboard view.
	RouteSuperAdminViews = "/super-admin/*"
	// RouteUIMount is the prefix of mount event routes.
	RouteUIMount = "/super-admin/ui/{mount}"
)

// Mount event route suffixes.
const (
	RouteEventToggle        = "/toggle"
	RouteEventResize        = "/resize"
	RouteEventNavigate      = "/navigate"
	RouteEventTheme         = "/theme"
	RouteEventRefresh       = "/refresh"
	RouteEventLogout        = "/logout"
	RouteEventLogoutConfirm = "/logout/confirm"
	RouteEventLogoutCancel  = "/logout/cancel"
	RouteEventUnmount       = "/unmount"
)

// Form and query field names.
const (
	fieldMount    = "mount"
	fieldPath     = "path"
	fieldTheme    = "theme"
	fieldUsername = "username"
	fieldPassword = "password"
)

// Log messages shared between handlers.
const (
	logRenderFailed = "failed to render template"
)
