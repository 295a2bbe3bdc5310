// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import "testing"

func TestDefaultMenu(t *testing.T) {
	menu := DefaultMenu(Base + "/")
	if len(menu) != 8 {
		t.Fatalf("len(menu) = %d, want 8", len(menu))
	}
	if menu[0].Route != "/super-admin/dashboard" {
		t.Errorf("menu[0].Route = %q", menu[0].Route)
	}
	if menu[7].Title != "Assign Faculty Roles" || menu[7].Route != "/super-admin/faculty-roles" {
		t.Errorf("menu[7] = %+v", menu[7])
	}
}

func TestLinks_ExactMatch(t *testing.T) {
	menu := DefaultMenu(Base)

	tests := []struct {
		path       string
		wantActive string
	}{
		{"/super-admin/dashboard", "Dashboard"},
		{"/super-admin/caste", "Manage Castes"},
		{"/super-admin/faculty-roles", "Assign Faculty Roles"},
		{"/super-admin/caste/", ""},
		{"/super-admin/caste/12", ""},
		{"/super-admin", ""},
		{"/super-admin/DASHBOARD", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			active := 0
			for _, l := range Links(menu, tt.path) {
				if l.Active {
					active++
					if l.Title != tt.wantActive {
						t.Errorf("active link = %q, want %q", l.Title, tt.wantActive)
					}
					if l.AriaCurrent() != "page" {
						t.Errorf("AriaCurrent() = %q, want page", l.AriaCurrent())
					}
				} else if l.AriaCurrent() != "" {
					t.Errorf("inactive link %q has AriaCurrent %q", l.Title, l.AriaCurrent())
				}
			}

			want := 0
			if tt.wantActive != "" {
				want = 1
			}
			if active != want {
				t.Errorf("active count = %d, want %d", active, want)
			}
		})
	}
}

func TestLinks_DuplicateRoutesMarkOne(t *testing.T) {
	items := []MenuItem{
		{Title: "A", Route: "/x"},
		{Title: "B", Route: "/x"},
	}
	links := Links(items, "/x")
	if !links[0].Active || links[1].Active {
		t.Errorf("links = %+v, want only the first active", links)
	}
}

func TestRouter_Resolve(t *testing.T) {
	r := NewRouter(Base, DefaultViews())

	for _, item := range DefaultMenu(Base) {
		v := r.Resolve(item.Route)
		if v.IsNotFound() {
			t.Errorf("Resolve(%q) = NotFound", item.Route)
			continue
		}
		if v.Title != item.Title {
			t.Errorf("Resolve(%q).Title = %q, want %q", item.Route, v.Title, item.Title)
		}
		if !r.Contains(item.Route) {
			t.Errorf("Contains(%q) = false", item.Route)
		}
	}

	for _, path := range []string{"/super-admin", "/super-admin/", "/super-admin/unknown", "/super-admin/caste/1", "/other/dashboard", ""} {
		if v := r.Resolve(path); !v.IsNotFound() {
			t.Errorf("Resolve(%q) = %+v, want NotFound", path, v)
		}
		if r.Contains(path) {
			t.Errorf("Contains(%q) = true", path)
		}
	}
}

func TestNewRouter_CopiesViews(t *testing.T) {
	views := DefaultViews()
	r := NewRouter(Base, views)
	delete(views, "dashboard")

	if !r.Contains("/super-admin/dashboard") {
		t.Error("router affected by mutation of the source map")
	}
}
