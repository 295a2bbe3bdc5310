// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the HTML templates and renders full pages and
// htmx fragments.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/campus-admin/internal/theme"
)

const baseLayout = "layouts/base.html"

// blankLinesRegex matches runs of blank lines left behind by template actions.
var blankLinesRegex = regexp.MustCompile(`(\r?\n[ \t]*)+\r?\n`)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses the shell page set and one set per entry page.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	shellFiles, err := getTemplateFiles(templatesFS, "shell")
	if err != nil {
		return fmt.Errorf("getting shell templates: %w", err)
	}
	if len(shellFiles) > 0 {
		// Parse in order: base layout, partials, shell templates
		files := append([]string{baseLayout}, partials...)
		files = append(files, shellFiles...)

		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing shell templates: %w", err)
		}
		r.templates["shell/page"] = tmpl
	}

	entryFiles, err := getTemplateFiles(templatesFS, "entry")
	if err != nil {
		return fmt.Errorf("getting entry templates: %w", err)
	}
	for _, tmplPath := range entryFiles {
		name := "entry/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

		files := append([]string{baseLayout}, partials...)
		files = append(files, tmplPath)

		tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Missing directories contribute no templates.
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"add": func(a, b int) int {
			return a + b
		},
		"themeLabel": func(n theme.Name) string {
			return n.Label()
		},
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	ThemeClass  string
	CurrentYear int
}

// Render renders a full page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, name, http.StatusOK, data)
}

// RenderStatus renders a full page through the base layout with the given status.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, name string, status int, data TemplateData) error {
	data.CurrentYear = time.Now().Year()
	if data.ThemeClass == "" {
		data.ThemeClass = theme.Default.Class()
	}

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	return r.execute(w, name, "base", status, data)
}

// RenderFragment renders a single named block of a template set, for htmx swaps.
// Flash messages are left in the session for the next full page.
func (r *Renderer) RenderFragment(w http.ResponseWriter, name, block string, status int, data TemplateData) error {
	data.CurrentYear = time.Now().Year()
	return r.execute(w, name, block, status, data)
}

func (r *Renderer) execute(w http.ResponseWriter, name, block string, status int, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, block, data); err != nil {
		return fmt.Errorf("executing template %s/%s: %w", name, block, err)
	}

	out := buf.Bytes()
	if !r.isDev {
		out = blankLinesRegex.ReplaceAll(out, []byte("\n"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(out)
	return err
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", message)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}
