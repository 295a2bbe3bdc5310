// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package layout

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mileusna/useragent"
)

// Viewport widths assumed when the client reports nothing better.
const (
	MobileWidth  = 390
	TabletWidth  = 800
	DesktopWidth = 1280
)

// ViewportField is the form, query and cookie name carrying the width
// reported by the client script.
const ViewportField = "vw"

// maxWidth rejects nonsense widths reported by clients.
const maxWidth = 16384

// WidthFromRequest returns the best known viewport width of the client.
// Sources in order: the vw form or query value, the viewport client hints,
// the vw cookie, then a guess from the User-Agent device class.
func WidthFromRequest(r *http.Request) int {
	if w, ok := ParseWidth(r.FormValue(ViewportField)); ok {
		return w
	}
	for _, h := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		if w, ok := ParseWidth(r.Header.Get(h)); ok {
			return w
		}
	}
	if c, err := r.Cookie(ViewportField); err == nil {
		if w, ok := ParseWidth(c.Value); ok {
			return w
		}
	}
	return GuessWidth(r.UserAgent())
}

// GuessWidth maps a User-Agent string to a typical viewport width.
func GuessWidth(ua string) int {
	if ua == "" {
		return DesktopWidth
	}
	parsed := useragent.Parse(ua)
	switch {
	case parsed.Tablet:
		return TabletWidth
	case parsed.Mobile:
		return MobileWidth
	default:
		return DesktopWidth
	}
}

// ParseWidth parses a reported viewport width in CSS pixels.
func ParseWidth(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	// Client hints may carry fractional CSS pixels. NaN fails both bounds.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(f >= 1 && f <= maxWidth) {
		return 0, false
	}
	return int(f), true
}
