// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import "strings"

// View describes an opaque sub-view mounted inside the shell.
// Name selects the template that renders it.
type View struct {
	Name        string
	Title       string
	Description string
}

// NotFound is resolved for paths no sub-view is registered for.
var NotFound = View{
	Name:        "not-found",
	Title:       "Page not found",
	Description: "The page you requested does not exist.",
}

// IsNotFound reports whether v is the NotFound view.
func (v View) IsNotFound() bool {
	return v.Name == NotFound.Name
}

// DefaultViews returns the sub-views keyed by route suffix.
func DefaultViews() map[string]View {
	return map[string]View{
		"dashboard":     {Name: "dashboard", Title: "Dashboard", Description: "Overview of the academic system."},
		"caste":         {Name: "caste", Title: "Manage Castes", Description: "Create and maintain caste categories."},
		"stream":        {Name: "stream", Title: "Manage Streams", Description: "Create and maintain academic streams."},
		"department":    {Name: "department", Title: "Manage Departments", Description: "Create and maintain departments."},
		"subject":       {Name: "subject", Title: "Manage Subjects", Description: "Create and maintain subjects."},
		"semester":      {Name: "semester", Title: "Manage Semesters", Description: "Create and maintain semesters."},
		"calendar":      {Name: "calendar", Title: "Academic Calendar", Description: "Schedule academic events."},
		"faculty-roles": {Name: "faculty-roles", Title: "Assign Faculty Roles", Description: "Assign roles to faculty members."},
	}
}

// Router maps dashboard paths to views.
type Router struct {
	base  string
	views map[string]View
}

// NewRouter creates a router for views mounted under base.
func NewRouter(base string, views map[string]View) *Router {
	copied := make(map[string]View, len(views))
	for k, v := range views {
		copied[k] = v
	}
	return &Router{base: strings.TrimRight(base, "/"), views: copied}
}

// Base returns the path the router is mounted under.
func (r *Router) Base() string {
	return r.base
}

// Resolve returns the view for path, or NotFound.
// Matching is exact: "/super-admin/caste/" and "/super-admin/caste/1" do not match.
func (r *Router) Resolve(path string) View {
	suffix, ok := strings.CutPrefix(path, r.base+"/")
	if !ok {
		return NotFound
	}
	if v, ok := r.views[suffix]; ok {
		return v
	}
	return NotFound
}

// Contains reports whether path resolves to a registered view.
func (r *Router) Contains(path string) bool {
	return !r.Resolve(path).IsNotFound()
}
