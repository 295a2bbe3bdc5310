// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme manages the dashboard color theme: the allowed names,
// the document-wide class marker and the persisted selection.
package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Name is one of the supported theme names.
type Name string

// Supported themes.
const (
	Light Name = "light"
	Dark  Name = "dark"
	Blue  Name = "blue"
)

// Default is used when no valid theme is stored.
const Default = Light

// ClassPrefix prefixes the theme name in the document class.
const ClassPrefix = "theme-"

// ErrUnknownTheme is returned by Parse for names outside the supported set.
var ErrUnknownTheme = errors.New("unknown theme")

var all = []Name{Light, Dark, Blue}

// All returns the supported themes in display order.
func All() []Name {
	out := make([]Name, len(all))
	copy(out, all)
	return out
}

// Parse validates a theme name. Matching is exact.
func Parse(s string) (Name, error) {
	for _, n := range all {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Normalize returns the named theme, or Default when s is missing or invalid.
func Normalize(s string) Name {
	n, err := Parse(s)
	if err != nil {
		return Default
	}
	return n
}

// Valid reports whether n is a supported theme.
func (n Name) Valid() bool {
	_, err := Parse(string(n))
	return err == nil
}

// Class returns the document class for the theme, e.g. "theme-dark".
func (n Name) Class() string {
	return ClassPrefix + string(n)
}

// Label returns the display label, e.g. "Dark".
func (n Name) Label() string {
	if n == "" {
		return ""
	}
	return strings.ToUpper(string(n[:1])) + string(n[1:])
}

// Marker is the document-wide theme attribute. Exactly one theme class is
// set at any time.
type Marker struct {
	classes map[Name]bool
}

// NewMarker returns a marker carrying the default theme class.
func NewMarker() *Marker {
	m := &Marker{classes: make(map[Name]bool, len(all))}
	m.Apply(Default)
	return m
}

// Apply sets the class of n and clears the other theme classes.
// Invalid names apply Default.
func (m *Marker) Apply(n Name) {
	if !n.Valid() {
		n = Default
	}
	for _, t := range all {
		m.classes[t] = t == n
	}
}

// Current returns the theme whose class is set.
func (m *Marker) Current() Name {
	for _, t := range all {
		if m.classes[t] {
			return t
		}
	}
	return Default
}

// Class returns the active document class.
func (m *Marker) Class() string {
	return m.Current().Class()
}

