// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package shell implements the dashboard shell: session bootstrap, the
// responsive sidebar, theme selection, navigation and the logout flow of
// one page load (a mount).
package shell

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/campus-admin/internal/identity"
	"github.com/olegiv/campus-admin/internal/layout"
	"github.com/olegiv/campus-admin/internal/nav"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/theme"
)

// EntryRoute is where unauthenticated mounts are sent.
const EntryRoute = "/"

// FetchErrorMessage is shown when the profile cannot be loaded for a
// reason other than a rejected token.
const FetchErrorMessage = "Failed to fetch user data"

var (
	// ErrUnknownRoute is returned by Navigate for paths without a view.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrLogoutNotRequested is returned by ConfirmLogout outside the confirmation step.
	ErrLogoutNotRequested = errors.New("logout not requested")
)

// ProfileFetcher loads the profile of the token holder.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (identity.Profile, error)
}

// profileForgetter is implemented by fetchers that cache profiles.
type profileForgetter interface {
	Forget(ctx context.Context, token string)
}

// profileRefresher is implemented by fetchers that can bypass their cache.
type profileRefresher interface {
	RefreshProfile(ctx context.Context, token string) (identity.Profile, error)
}

// Config holds the collaborators of a Shell.
type Config struct {
	Storage    session.Storage
	Fetcher    ProfileFetcher
	Menu       []nav.MenuItem
	Router     *nav.Router
	Registry   *Registry
	Breakpoint int
	Logger     *slog.Logger
}

// Shell creates mounts and owns their shared collaborators.
type Shell struct {
	storage    session.Storage
	fetcher    ProfileFetcher
	menu       []nav.MenuItem
	router     *nav.Router
	registry   *Registry
	breakpoint int
	logger     *slog.Logger
	newID      func() string
}

// New creates a Shell. Menu, Router and Registry default to the standard
// dashboard menu, views and a registry with a 30 minute idle timeout.
func New(cfg Config) *Shell {
	s := &Shell{
		storage:    cfg.Storage,
		fetcher:    cfg.Fetcher,
		menu:       cfg.Menu,
		router:     cfg.Router,
		registry:   cfg.Registry,
		breakpoint: cfg.Breakpoint,
		logger:     cfg.Logger,
		newID:      uuid.NewString,
	}
	if s.menu == nil {
		s.menu = nav.DefaultMenu(nav.Base)
	}
	if s.router == nil {
		s.router = nav.NewRouter(nav.Base, nav.DefaultViews())
	}
	if s.registry == nil {
		s.registry = NewRegistry(30 * time.Minute)
	}
	if s.breakpoint <= 0 {
		s.breakpoint = layout.Breakpoint
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Registry returns the registry holding live mounts.
func (s *Shell) Registry() *Registry {
	return s.registry
}

// Router returns the view router.
func (s *Shell) Router() *nav.Router {
	return s.router
}

// Lookup returns a live mount owned by owner.
func (s *Shell) Lookup(id, owner string) (*Mount, error) {
	return s.registry.Get(id, owner)
}

// Mount starts a page load of path for a viewport of the given width.
//
// Without a stored token the mount redirects to EntryRoute, performs no
// network request and is not registered. Otherwise it is registered under
// owner and the profile is fetched once.
func (s *Shell) Mount(ctx context.Context, owner, path string, width int) *Mount {
	th := theme.NewController(s.storage)
	th.Load(ctx)

	m := &Mount{
		shell:   s,
		id:      s.newID(),
		owner:   owner,
		path:    path,
		view:    s.router.Resolve(path),
		sidebar: layout.NewSidebar(width, s.breakpoint),
		theme:   th,
	}
	m.touch()

	if s.storage.GetString(ctx, session.KeyToken) == "" {
		m.redirect = EntryRoute
		return m
	}

	if old := s.registry.Add(m); old != nil {
		s.logger.Debug("evicted least recently used mount", "mount", old.id, "limit", s.registry.maxPerOwner)
	}
	m.Bootstrap(ctx)
	return m
}

// Unmount removes a mount from the registry.
func (s *Shell) Unmount(m *Mount) {
	s.registry.Remove(m.ID())
}
