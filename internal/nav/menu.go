// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav defines the static sidebar menu and maps dashboard routes
// to their sub-views.
package nav

import "strings"

// Base is the dashboard base path.
const Base = "/super-admin"

// MenuItem is a static sidebar entry.
type MenuItem struct {
	Title string
	Icon  string // icon name rendered by the icon partial
	Route string
}

// DefaultMenu returns the sidebar entries under base.
func DefaultMenu(base string) []MenuItem {
	base = strings.TrimRight(base, "/")
	return []MenuItem{
		{Title: "Dashboard", Icon: "users", Route: base + "/dashboard"},
		{Title: "Manage Castes", Icon: "users", Route: base + "/caste"},
		{Title: "Manage Streams", Icon: "settings", Route: base + "/stream"},
		{Title: "Manage Departments", Icon: "briefcase", Route: base + "/department"},
		{Title: "Manage Subjects", Icon: "book-open", Route: base + "/subject"},
		{Title: "Manage Semesters", Icon: "graduation-cap", Route: base + "/semester"},
		{Title: "Academic Calendar", Icon: "calendar", Route: base + "/calendar"},
		{Title: "Assign Faculty Roles", Icon: "clipboard-list", Route: base + "/faculty-roles"},
	}
}

// Link is a menu item resolved against the current path.
type Link struct {
	MenuItem
	Active bool
}

// AriaCurrent returns the aria-current value for the link.
func (l Link) AriaCurrent() string {
	if l.Active {
		return "page"
	}
	return ""
}

// Links marks the item whose route equals currentPath exactly.
// At most one link is active, even if routes repeat.
func Links(items []MenuItem, currentPath string) []Link {
	links := make([]Link, len(items))
	found := false
	for i, item := range items {
		links[i] = Link{MenuItem: item}
		if !found && item.Route == currentPath {
			links[i].Active = true
			found = true
		}
	}
	return links
}
