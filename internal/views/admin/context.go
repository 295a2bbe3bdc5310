// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package admin provides the view models for the super-admin shell templates.
package admin

import (
	"strings"

	"github.com/olegiv/campus-admin/internal/shell"
)

// UIPrefix is the path under which mount events are posted.
const UIPrefix = "/super-admin/ui/"

// PageContext carries shared data for the shell templates.
type PageContext struct {
	State shell.State
}

// NewPageContext wraps a mount snapshot for rendering.
func NewPageContext(st shell.State) *PageContext {
	return &PageContext{State: st}
}

// UIBase returns the event endpoint prefix of the mount.
func (pc *PageContext) UIBase() string {
	return UIPrefix + pc.State.ID
}

// UIAction returns the endpoint of a mount event, e.g. "toggle".
func (pc *PageContext) UIAction(action string) string {
	return pc.UIBase() + "/" + strings.TrimPrefix(action, "/")
}

// IsActive returns true if the given path matches the current path.
func (pc *PageContext) IsActive(path string) bool {
	return pc.State.Path == path
}

// HasPrefix returns true if the current path starts with the given prefix.
func (pc *PageContext) HasPrefix(prefix string) bool {
	return strings.HasPrefix(pc.State.Path, prefix)
}

// UserInitial returns the avatar letter of the loaded profile, or "" before it loads.
func (pc *PageContext) UserInitial() string {
	return pc.State.Initial
}

// Title returns the page title for the current view.
func (pc *PageContext) Title() string {
	return pc.State.View.Title
}
