// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strings"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// SetHXRedirect instructs htmx to load url as a full page.
func SetHXRedirect(w http.ResponseWriter, url string) { w.Header().Set("Hx-Redirect", url) }

// SetHXPushURL pushes url into the browser history for the swapped content.
func SetHXPushURL(w http.ResponseWriter, url string) { w.Header().Set("Hx-Push-Url", url) }

// SetHXReswap overrides the swap style of the triggering element.
func SetHXReswap(w http.ResponseWriter, style string) { w.Header().Set("Hx-Reswap", style) }

// currentPagePath returns the path of the page that issued the
// request, from Hx-Current-Url or Referer, or fallback. The query is dropped
// so a stale mount id is not reused. Cross-host values
// are ignored.
func currentPagePath(r *http.Request, fallback string) string {
	for _, raw := range []string{r.Header.Get("Hx-Current-Url"), r.Referer()} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Host != "" && u.Host != r.Host) || !strings.HasPrefix(u.Path, "/") {
			continue
		}
		return u.Path
	}
	return fallback
}
