// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package layout

import "testing"

func TestNewSidebar_OpenMatchesBreakpoint(t *testing.T) {
	for _, w := range []int{0, 320, 768, 1023, 1024, 1025, 1440, 2560} {
		s := NewSidebar(w, Breakpoint)
		if got, want := s.Open(), w >= 1024; got != want {
			t.Errorf("NewSidebar(%d).Open() = %v, want %v", w, got, want)
		}
	}
}

func TestNewSidebar_DefaultBreakpoint(t *testing.T) {
	s := NewSidebar(1000, 0)
	if s.Breakpoint() != Breakpoint {
		t.Errorf("Breakpoint() = %d, want %d", s.Breakpoint(), Breakpoint)
	}
}

func TestSidebar_Toggle(t *testing.T) {
	s := NewSidebar(1280, Breakpoint)
	s.Toggle()
	if s.Open() {
		t.Error("expected closed after one toggle")
	}
	s.Toggle()
	if !s.Open() {
		t.Error("expected open after two toggles")
	}
}

func TestSidebar_ResizeTracksLastCrossing(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		widths []int
		want   bool
	}{
		{"no resize wide", 1280, nil, true},
		{"cross to narrow", 1280, []int{800}, false},
		{"cross to narrow then wide", 1280, []int{800, 1100}, true},
		{"narrow jitter", 800, []int{700, 900, 1000}, false},
		{"wide jitter", 1100, []int{1500, 1024, 1900}, true},
		{"many crossings ending narrow", 1280, []int{900, 1300, 400, 1024, 1023}, false},
		{"exact breakpoint opens", 1000, []int{1024}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSidebar(tt.start, Breakpoint)
			for _, w := range tt.widths {
				s.Resize(w)
			}
			if s.Open() != tt.want {
				t.Errorf("Open() = %v, want %v", s.Open(), tt.want)
			}
		})
	}
}

func TestSidebar_ToggleSurvivesNonCrossingResize(t *testing.T) {
	s := NewSidebar(800, Breakpoint)
	s.Toggle() // open on a narrow viewport

	if changed := s.Resize(600); changed {
		t.Error("non-crossing resize reported a change")
	}
	if !s.Open() {
		t.Error("user toggle lost on a non-crossing resize")
	}

	s = NewSidebar(1400, Breakpoint)
	s.Toggle() // closed on a wide viewport
	s.Resize(1200)
	if s.Open() {
		t.Error("user toggle lost on a non-crossing wide resize")
	}

	// The next crossing overrides the toggle.
	s.Resize(900)
	s.Resize(1200)
	if !s.Open() {
		t.Error("crossing to wide did not open the sidebar")
	}
}

func TestSidebar_ResizeReportsChange(t *testing.T) {
	s := NewSidebar(1280, Breakpoint)
	if !s.Resize(600) {
		t.Error("crossing to narrow while open should report a change")
	}

	s = NewSidebar(1280, Breakpoint)
	s.Toggle()
	if s.Resize(600) {
		t.Error("crossing to narrow while already closed should not report a change")
	}
	if !s.Narrow() {
		t.Error("Narrow() = false after resizing to 600")
	}
}

func TestSidebar_SelectNav(t *testing.T) {
	narrow := NewSidebar(600, Breakpoint)
	narrow.Toggle()
	if !narrow.SelectNav() || narrow.Open() {
		t.Error("SelectNav should close an open sidebar on a narrow viewport")
	}
	if narrow.SelectNav() {
		t.Error("SelectNav on a closed sidebar should be a no-op")
	}

	wide := NewSidebar(1280, Breakpoint)
	if wide.SelectNav() || !wide.Open() {
		t.Error("SelectNav should not affect a wide viewport")
	}
}
