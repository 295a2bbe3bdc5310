// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic housekeeping jobs: sweeping idle
// mounts, pruning the audit log and reporting cache statistics.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/campus-admin/internal/cache"
)

// Job schedules.
const (
	SweepSchedule      = "@every 1m"
	PruneSchedule      = "@hourly"
	CacheStatsSchedule = "@every 15m"
)

// MountSweeper drops mounts idle for too long.
type MountSweeper interface {
	Sweep(now time.Time) int
}

// EventPruner removes audit entries older than a retention period.
type EventPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Config holds the jobs' collaborators. Nil collaborators disable their job.
type Config struct {
	Mounts    MountSweeper
	Events    EventPruner
	Retention time.Duration
	Cache     cache.StatsProvider
	Logger    *slog.Logger
}

// Scheduler runs housekeeping jobs on a cron.
type Scheduler struct {
	cron      *cron.Cron
	mounts    MountSweeper
	events    EventPruner
	retention time.Duration
	cache     cache.StatsProvider
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a scheduler. It does nothing until Start.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Scheduler{
		cron:      cron.New(),
		mounts:    cfg.Mounts,
		events:    cfg.Events,
		retention: retention,
		cache:     cfg.Cache,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the configured jobs and starts the cron.
func (s *Scheduler) Start() error {
	if s.mounts != nil {
		if _, err := s.cron.AddFunc(SweepSchedule, func() { s.SweepMounts() }); err != nil {
			return err
		}
	}
	if s.events != nil {
		if _, err := s.cron.AddFunc(PruneSchedule, func() {
			if _, err := s.PruneEvents(context.Background()); err != nil {
				s.logger.Error("failed to prune audit events", "error", err)
			}
		}); err != nil {
			return err
		}
	}
	if s.cache != nil {
		if _, err := s.cron.AddFunc(CacheStatsSchedule, s.ReportCache); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepMounts drops idle mounts and returns how many were removed.
func (s *Scheduler) SweepMounts() int {
	if s.mounts == nil {
		return 0
	}
	n := s.mounts.Sweep(s.now())
	if n > 0 {
		s.logger.Info("swept idle mounts", "count", n)
	}
	return n
}

// PruneEvents removes audit entries older than the retention period.
func (s *Scheduler) PruneEvents(ctx context.Context) (int64, error) {
	if s.events == nil {
		return 0, nil
	}
	n, err := s.events.Prune(ctx, s.retention)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned audit events", "count", n, "retention", s.retention)
	}
	return n, nil
}

// ReportCache logs the profile cache statistics.
func (s *Scheduler) ReportCache() {
	if s.cache == nil {
		return
	}
	st := s.cache.Stats()
	s.logger.Info("profile cache stats",
		"hits", st.Hits,
		"misses", st.Misses,
		"hit_rate", st.HitRate,
		"items", st.Items,
	)
}
