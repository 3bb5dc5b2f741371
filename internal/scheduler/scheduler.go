// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/store"
)

// DefaultAuditSchedule runs the counter audit every 15 minutes.
const DefaultAuditSchedule = "*/15 * * * *"

// auditTimeout bounds a single audit run.
const auditTimeout = 30 * time.Second

// Scheduler handles scheduled tasks like the news counter audit.
type Scheduler struct {
	news     store.NewsStore
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// New creates a new scheduler instance. An empty schedule uses DefaultAuditSchedule.
func New(news store.NewsStore, schedule string, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		news:     news,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}
}

// Start runs the audit once and then on the configured schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.AuditCounter(ctx); err != nil {
		s.logger.Error("initial counter audit failed", "error", err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if _, err := s.AuditCounter(runCtx); err != nil {
			s.logger.Error("counter audit failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling counter audit: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// AuditCounter raises the id counter to the highest stored newsID when it
// lags behind, so the next published item cannot reuse an id.
// It reports whether the counter was changed.
func (s *Scheduler) AuditCounter(ctx context.Context) (bool, error) {
	items, err := s.news.ListNews(ctx)
	if err != nil {
		return false, fmt.Errorf("listing news: %w", err)
	}
	maxID := model.MaxNewsID(items)
	if maxID == 0 {
		return false, nil
	}

	lastID, err := s.news.LastID(ctx)
	if err != nil {
		return false, fmt.Errorf("reading counter: %w", err)
	}
	if lastID >= maxID {
		return false, nil
	}

	raised, err := s.news.RaiseLastID(ctx, maxID)
	if err != nil {
		return false, fmt.Errorf("raising counter: %w", err)
	}
	if raised {
		s.logger.Warn("news counter lagged behind stored items; raised",
			"last_id", lastID,
			"max_news_id", maxID,
		)
	}
	return raised, nil
}
