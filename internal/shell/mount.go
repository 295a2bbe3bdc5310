// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegiv/campus-admin/internal/identity"
	"github.com/olegiv/campus-admin/internal/layout"
	"github.com/olegiv/campus-admin/internal/nav"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/theme"
)

// LogoutState is the step of the logout confirmation flow.
type LogoutState int

const (
	LogoutIdle LogoutState = iota
	LogoutConfirming
)

// Mount is the state of one page load. All methods are safe for concurrent use.
type Mount struct {
	shell *Shell
	id    string
	owner string

	mu       sync.Mutex
	path     string
	view     nav.View
	sidebar  *layout.Sidebar
	theme    *theme.Controller
	user     *identity.Profile
	errMsg   string
	logout   LogoutState
	redirect string
	seq      uint64

	lastSeen atomic.Int64 // unix nanoseconds
}

// ID returns the opaque mount identifier.
func (m *Mount) ID() string {
	return m.id
}

// Owner returns the token the mount was created for.
func (m *Mount) Owner() string {
	return m.owner
}

// Redirect returns the route the client must navigate to, or "".
func (m *Mount) Redirect() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redirect
}

// Path returns the current route.
func (m *Mount) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

// Bootstrap fetches the profile for the stored token.
//
// A rejected token is removed from storage and the mount redirects to
// EntryRoute. Any other failure sets FetchErrorMessage and leaves the mount
// interactive. Results of a fetch superseded by a later one are dropped.
func (m *Mount) Bootstrap(ctx context.Context) {
	m.load(ctx, false)
}

// Refresh re-runs the profile fetch on demand. Cached profiles are bypassed.
func (m *Mount) Refresh(ctx context.Context) {
	m.touch()
	m.load(ctx, true)
}

func (m *Mount) load(ctx context.Context, fresh bool) {
	s := m.shell

	m.mu.Lock()
	m.seq++
	seq := m.seq
	token := s.storage.GetString(ctx, session.KeyToken)
	if token == "" {
		m.user = nil
		m.redirect = EntryRoute
		m.mu.Unlock()
		s.registry.Remove(m.id)
		return
	}
	m.mu.Unlock()

	var (
		profile identity.Profile
		err     error
	)
	if r, ok := s.fetcher.(profileRefresher); ok && fresh {
		profile, err = r.RefreshProfile(ctx, token)
	} else {
		profile, err = s.fetcher.FetchProfile(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if seq != m.seq {
		s.logger.Debug("dropping superseded profile result", "mount", m.id)
		return
	}

	switch {
	case err == nil:
		m.user = &profile
		m.errMsg = ""
	case errors.Is(err, identity.ErrUnauthorized):
		s.storage.Remove(ctx, session.KeyToken)
		if f, ok := s.fetcher.(profileForgetter); ok {
			f.Forget(ctx, token)
		}
		m.user = nil
		m.errMsg = ""
		m.redirect = EntryRoute
		s.registry.Remove(m.id)
		s.logger.Info("profile token rejected, session cleared", "mount", m.id)
	default:
		m.user = nil
		m.errMsg = FetchErrorMessage
		s.logger.Warn("profile fetch failed", "mount", m.id, "error", err)
	}
}

// Toggle inverts the sidebar.
func (m *Mount) Toggle() {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sidebar.Toggle()
}

// Resize records a viewport width and reports whether the sidebar changed.
func (m *Mount) Resize(width int) bool {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sidebar.Resize(width)
}

// Navigate switches to the view at path. On narrow viewports an open
// sidebar is closed.
func (m *Mount) Navigate(path string) error {
	m.touch()
	router := m.shell.router
	if !router.Contains(path) {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = path
	m.view = router.Resolve(path)
	m.sidebar.SelectNav()
	return nil
}

// SetTheme persists and applies a theme. The profile is not refetched.
func (m *Mount) SetTheme(ctx context.Context, name string) error {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.theme.Set(ctx, name)
	return err
}

// RequestLogout opens the confirmation modal and, on narrow viewports,
// closes the sidebar. Storage is not touched.
func (m *Mount) RequestLogout() {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logout = LogoutConfirming
	m.sidebar.SelectNav()
}

// CancelLogout closes the confirmation modal. Storage is not touched.
func (m *Mount) CancelLogout() {
	m.touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logout = LogoutIdle
}

// ConfirmLogout clears the stored token and theme and redirects to
// EntryRoute. It fails unless the confirmation modal is open.
func (m *Mount) ConfirmLogout(ctx context.Context) error {
	m.touch()
	s := m.shell

	m.mu.Lock()
	if m.logout != LogoutConfirming {
		m.mu.Unlock()
		return ErrLogoutNotRequested
	}

	token := s.storage.GetString(ctx, session.KeyToken)
	s.storage.Remove(ctx, session.KeyToken)
	s.storage.Remove(ctx, session.KeyTheme)
	m.user = nil
	m.errMsg = ""
	m.logout = LogoutIdle
	m.redirect = EntryRoute
	// Invalidate any fetch still in flight.
	m.seq++
	m.mu.Unlock()

	if f, ok := s.fetcher.(profileForgetter); ok && token != "" {
		f.Forget(ctx, token)
	}
	s.registry.Remove(m.id)
	return nil
}

// Snapshot returns the render state of the mount.
func (m *Mount) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State{
		ID:          m.id,
		Path:        m.path,
		View:        m.view,
		SidebarOpen: m.sidebar.Open(),
		Narrow:      m.sidebar.Narrow(),
		Breakpoint:  m.sidebar.Breakpoint(),
		Theme:       m.theme.Current(),
		Themes:      theme.All(),
		Links:       nav.Links(m.shell.menu, m.path),
		Error:       m.errMsg,
		LogoutOpen:  m.logout == LogoutConfirming,
		Redirect:    m.redirect,
	}
	st.ThemeClass = m.theme.Class()
	if m.user != nil {
		u := *m.user
		st.User = &u
		st.Initial = u.Initial()
	}
	return st
}

func (m *Mount) touch() {
	m.lastSeen.Store(time.Now().UnixNano())
}

func (m *Mount) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, m.lastSeen.Load()))
}
