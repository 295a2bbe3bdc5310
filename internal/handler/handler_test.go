// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-admin/internal/identity"
	"github.com/olegiv/campus-admin/internal/middleware"
	"github.com/olegiv/campus-admin/internal/render"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/shell"
	"github.com/olegiv/campus-admin/web"
)

const testPassword = "secret"

// fakeAuth accepts testPassword for any username except "down", whose
// backend is unreachable.
type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, username, password string) (string, error) {
	if username == "down" {
		return "", errors.New("backend unreachable")
	}
	if password != testPassword {
		return "", identity.ErrInvalidCredentials
	}
	return "tok-" + username, nil
}

// fakeFetcher returns a profile named after the token and counts calls.
type fakeFetcher struct {
	calls atomic.Int32
}

func (f *fakeFetcher) FetchProfile(_ context.Context, token string) (identity.Profile, error) {
	f.calls.Add(1)
	return identity.Profile{Username: strings.TrimPrefix(token, "tok-"), Role: "superadmin"}, nil
}

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	shell   *shell.Shell
	fetcher *fakeFetcher
}

type appOption func(*Handlers, *RouteOptions)

func withLoginProtection(lp *middleware.LoginProtection) appOption {
	return func(h *Handlers, o *RouteOptions) {
		h.Entry.loginProtection = lp
		o.LoginProtection = lp
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	sm := scs.New()
	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm, IsDev: true})
	require.NoError(t, err)

	storage := session.NewDurable(sm)
	fetcher := &fakeFetcher{}
	sh := shell.New(shell.Config{
		Storage:  storage,
		Fetcher:  fetcher,
		Registry: shell.NewRegistry(time.Minute),
		Logger:   testLogger(),
	})

	h := Handlers{
		Entry: NewEntryHandler(renderer, sm, fakeAuth{}, nil, nil),
		Shell: NewShellHandler(sh, renderer, sm, nil, testLogger()),
	}
	ro := RouteOptions{Storage: storage}
	for _, opt := range opts {
		opt(&h, &ro)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, h, ro)

	srv := httptest.NewServer(sm.LoadAndSave(r))
	t.Cleanup(srv.Close)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: newJar(t),
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		shell:   sh,
		fetcher: fetcher,
	}
}

func newJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

type response struct {
	status int
	header http.Header
	body   string
}

func (a *testApp) do(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: string(body)}
}

func (a *testApp) get(t *testing.T, path string, header http.Header) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	return a.do(t, req)
}

func (a *testApp) post(t *testing.T, path string, form url.Values, htmx bool) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("Hx-Request", "true")
	}
	return a.do(t, req)
}

func (a *testApp) login(t *testing.T, username string) {
	t.Helper()
	resp := a.post(t, RouteLogin, url.Values{fieldUsername: {username}, fieldPassword: {testPassword}}, false)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, RouteDashboard, resp.header.Get("Location"))
}

var mountIDPattern = regexp.MustCompile(`data-mount="([^"]+)"`)

// open loads a dashboard page on a wide viewport and returns its mount id.
func (a *testApp) open(t *testing.T, path string) (string, response) {
	t.Helper()
	resp := a.get(t, path, http.Header{"Sec-Ch-Viewport-Width": {"1280"}})
	m := mountIDPattern.FindStringSubmatch(resp.body)
	require.Len(t, m, 2, "page %s carries no mount id", path)
	return m[1], resp
}

func eventPath(id, suffix string) string {
	return RouteSuperAdmin + "/ui/" + id + suffix
}
