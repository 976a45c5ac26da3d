package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/osonapteka/backoffice/internal/audit"
	"github.com/osonapteka/backoffice/internal/settingsstore"
	"github.com/osonapteka/backoffice/internal/syncer"
)

// Config holds the three cron expressions and the retention window.
type Config struct {
	Enabled        bool
	Schedule       string
	HourlySchedule string
	DailySchedule  string
	RetentionDays  int
}

// Scheduler drives the sync engine on three cadences: the frequent sync for
// today's data, an hourly pass with a fresh login, and a daily pass that also
// prunes old sales. The engine itself refuses overlapping runs, so a slow
// sync simply makes the next tick a no-op.
type Scheduler struct {
	engine   *syncer.Engine
	settings *settingsstore.SettingsStore
	auditor  *audit.Service
	config   Config

	cron      *cron.Cron
	mu        sync.RWMutex
	isRunning bool
}

// New creates a scheduler around an engine. Nothing is scheduled until Start.
func New(engine *syncer.Engine, settings *settingsstore.SettingsStore, auditor *audit.Service, config Config) *Scheduler {
	return &Scheduler{
		engine:   engine,
		settings: settings,
		auditor:  auditor,
		config:   config,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		log.Printf("Sync scheduler: disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.engine.RunFullSync(ctx, "", "schedule")
	}); err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}

	if _, err := s.cron.AddFunc(s.config.HourlySchedule, func() {
		s.engine.InvalidateSession()
		s.engine.RunFullSync(ctx, "", "schedule")
		if threshold := s.settings.GetLowStockThreshold(); threshold > 0 {
			if err := s.engine.CheckLowStock(threshold, 50); err != nil {
				log.Printf("Low stock check failed: %v", err)
			}
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule hourly job: %w", err)
	}

	if _, err := s.cron.AddFunc(s.config.DailySchedule, func() {
		if _, err := s.engine.PruneOldSales(s.config.RetentionDays); err != nil {
			log.Printf("Retention cleanup failed: %v", err)
		}
		if s.auditor != nil {
			if _, err := s.auditor.Prune(s.config.RetentionDays); err != nil {
				log.Printf("Run history cleanup failed: %v", err)
			}
		}
		s.engine.InvalidateSession()
		s.engine.RunFullSync(ctx, "", "schedule")
	}); err != nil {
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	log.Printf("Sync scheduler: started (sync '%s', hourly '%s', daily '%s')",
		s.config.Schedule, s.config.HourlySchedule, s.config.DailySchedule)
	return nil
}

// Stop stops accepting new jobs and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Sync scheduler: stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
