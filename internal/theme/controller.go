// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"context"

	"github.com/olegiv/campus-admin/internal/session"
)

// Controller ties the persisted theme selection to a document marker.
// It is owned by a single mount and is not safe for concurrent use.
type Controller struct {
	storage session.Storage
	marker  *Marker
}

// NewController creates a controller backed by storage.
func NewController(storage session.Storage) *Controller {
	return &Controller{
		storage: storage,
		marker:  NewMarker(),
	}
}

// Load reads the stored theme, applies it and returns it.
// Missing or invalid values yield Default; storage is left untouched.
func (c *Controller) Load(ctx context.Context) Name {
	n := Normalize(c.storage.GetString(ctx, session.KeyTheme))
	c.marker.Apply(n)
	return n
}

// Set validates and persists a theme, then applies it.
// Setting the current theme again is a no-op in effect.
func (c *Controller) Set(ctx context.Context, name string) (Name, error) {
	n, err := Parse(name)
	if err != nil {
		return c.marker.Current(), err
	}
	c.storage.Put(ctx, session.KeyTheme, string(n))
	c.marker.Apply(n)
	return n, nil
}

// Current returns the applied theme.
func (c *Controller) Current() Name {
	return c.marker.Current()
}

// Class returns the document class set by the marker.
func (c *Controller) Class() string {
	return c.marker.Class()
}
