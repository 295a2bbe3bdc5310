// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package layout tracks the responsive sidebar of the dashboard shell.
package layout

// Breakpoint is the viewport width in CSS pixels separating the narrow
// (overlay sidebar) layout from the wide (docked sidebar) layout.
const Breakpoint = 1024

// Sidebar is the open/closed state of the navigation sidebar.
//
// The state is derived from the viewport only at construction and when a
// resize crosses the breakpoint. A user toggle holds until the next crossing.
// Sidebar is not safe for concurrent use.
type Sidebar struct {
	open       bool
	width      int
	breakpoint int
}

// NewSidebar creates a sidebar for a viewport of the given width.
// A non-positive breakpoint falls back to Breakpoint.
func NewSidebar(width, breakpoint int) *Sidebar {
	if breakpoint <= 0 {
		breakpoint = Breakpoint
	}
	return &Sidebar{
		open:       width >= breakpoint,
		width:      width,
		breakpoint: breakpoint,
	}
}

// Toggle inverts the sidebar state.
func (s *Sidebar) Toggle() {
	s.open = !s.open
}

// Resize records a new viewport width. Crossing below the breakpoint
// closes the sidebar and crossing to or above it opens the sidebar.
// It reports whether the open state changed.
func (s *Sidebar) Resize(width int) bool {
	wasNarrow := s.Narrow()
	s.width = width
	nowNarrow := s.Narrow()

	if wasNarrow == nowNarrow {
		return false
	}

	before := s.open
	s.open = !nowNarrow
	return before != s.open
}

// SelectNav closes an open sidebar on narrow viewports after a menu item
// is chosen. It reports whether the state changed.
func (s *Sidebar) SelectNav() bool {
	if s.Narrow() && s.open {
		s.Toggle()
		return true
	}
	return false
}

// Open reports whether the sidebar is visible.
func (s *Sidebar) Open() bool {
	return s.open
}

// Narrow reports whether the last observed width is below the breakpoint.
func (s *Sidebar) Narrow() bool {
	return s.width < s.breakpoint
}

// Breakpoint returns the breakpoint this sidebar uses.
func (s *Sidebar) Breakpoint() int {
	return s.breakpoint
}
