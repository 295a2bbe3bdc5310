// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/campus-admin/internal/cache"
	"github.com/olegiv/campus-admin/internal/config"
	"github.com/olegiv/campus-admin/internal/handler"
	"github.com/olegiv/campus-admin/internal/identity"
	"github.com/olegiv/campus-admin/internal/logging"
	"github.com/olegiv/campus-admin/internal/middleware"
	"github.com/olegiv/campus-admin/internal/render"
	"github.com/olegiv/campus-admin/internal/scheduler"
	"github.com/olegiv/campus-admin/internal/session"
	"github.com/olegiv/campus-admin/internal/shell"
	"github.com/olegiv/campus-admin/internal/store"
	"github.com/olegiv/campus-admin/internal/version"
	"github.com/olegiv/campus-admin/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "campusadmin - Campus super-admin dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SESSION_SECRET     Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_DB_PATH            SQLite database path (default: ./data/campus.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_BACKEND_URL        Identity backend base URL\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_BREAKPOINT         Sidebar breakpoint in CSS pixels (default: 1024)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_REDIS_URL          Redis URL for the shared profile cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Printf("campusadmin %s\n", versionInfo)
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	events := logging.NewEventLog(db)

	sessionManager := session.New(db, cfg.IsDevelopment(), cfg.SessionLifetime)
	storage := session.NewDurable(sessionManager)
	slog.Info("session manager initialized", "lifetime", sessionManager.Lifetime)

	// Profile cache (Redis when configured, memory otherwise)
	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.MaxSize = cfg.CacheMaxSize
	if cfg.ProfileCacheTTL > 0 {
		cacheCfg.DefaultTTL = cfg.ProfileCacheTTL
	}
	cacheResult, err := cache.NewCacheWithInfo(cacheCfg)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheResult.Cache.Close() }()
	if cacheResult.IsFallback {
		slog.Warn("profile cache initialized", "backend", cacheResult.Backend, "note", "Redis unavailable, using fallback")
	} else {
		slog.Info("profile cache initialized", "backend", cacheResult.Backend, "ttl", cfg.ProfileCacheTTL, "profiles_cached", cfg.ProfileCacheTTL > 0)
	}

	identityClient := identity.NewClient(identity.Config{
		ProfileURL: cfg.ProfileURL(),
		LoginURL:   cfg.LoginURL(),
		Timeout:    cfg.BackendTimeout,
		Cache:      cacheResult.Cache,
		CacheTTL:   cfg.ProfileCacheTTL,
		Logger:     logger,
	})

	sh := shell.New(shell.Config{
		Storage:    storage,
		Fetcher:    identityClient,
		Registry:   shell.NewRegistryWithLimit(cfg.MountIdleTimeout, cfg.MaxMountsPerOwner),
		Breakpoint: cfg.Breakpoint,
		Logger:     logger,
	})

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	// Housekeeping jobs
	schedCfg := scheduler.Config{
		Mounts:    sh.Registry(),
		Events:    events,
		Retention: cfg.EventRetention,
		Logger:    logger,
	}
	if sp, ok := cacheResult.Cache.(cache.StatsProvider); ok {
		schedCfg.Cache = sp
	}
	sched := scheduler.New(schedCfg)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	securityConfig.ExcludePaths = append(securityConfig.ExcludePaths, handler.RouteHealth)
	r.Use(middleware.SecurityHeaders(securityConfig))
	r.Use(middleware.ClientHints)
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr()))
	slog.Info("CSRF protection initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	// 10 requests per second with burst of 20 per IP
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	handlers := handler.Handlers{
		Entry:  handler.NewEntryHandler(renderer, sessionManager, identityClient, loginProtection, events),
		Shell:  handler.NewShellHandler(sh, renderer, sessionManager, events, logger),
		Health: handler.NewHealthHandler(db, sessionManager, cacheResult.Cache, sh.Registry(), events, versionInfo),
	}
	handler.RegisterRoutes(r, handlers, handler.RouteOptions{
		Storage:         storage,
		CSRF:            csrfMiddleware,
		LoginProtection: loginProtection,
		PublicLimiter:   publicRateLimiter,
		Static:          staticFS,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
