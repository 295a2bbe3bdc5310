// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shell

import (
	"github.com/olegiv/campus-admin/internal/identity"
	"github.com/olegiv/campus-admin/internal/nav"
	"github.com/olegiv/campus-admin/internal/theme"
)

// State is an immutable copy of a mount for rendering.
type State struct {
	ID          string
	Path        string
	View        nav.View
	SidebarOpen bool
	Narrow      bool
	Breakpoint  int
	Theme       theme.Name
	ThemeClass  string
	Themes      []theme.Name
	Links       []nav.Link
	User        *identity.Profile
	Initial     string
	Error       string
	LogoutOpen  bool
	Redirect    string
}

// Authenticated reports whether a profile is loaded.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Role returns the role label of the loaded profile.
func (s State) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Username returns the username of the loaded profile.
func (s State) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

// NotFound reports whether the current path has no view.
func (s State) NotFound() bool {
	return s.View.IsNotFound()
}
