package audit

import (
	"log"
	"time"

	"github.com/osonapteka/backoffice/internal/database/runs"
	"github.com/osonapteka/backoffice/internal/entities"
)

// Service records finished sync runs so operators can see what happened
// overnight. Recording is best-effort and never fails a sync.
type Service struct {
	repo *runs.Repository
}

// NewService creates a new audit service.
func NewService(repo *runs.Repository) *Service {
	return &Service{repo: repo}
}

// LogRun records a run in the background (non-blocking).
func (s *Service) LogRun(run *entities.SyncRun) {
	go func() {
		if err := s.repo.Record(run); err != nil {
			log.Printf("Failed to record sync run: %v", err)
		}
	}()
}

// LogFullSync builds and records the history row for one full or sales-only
// run.
func (s *Service) LogFullSync(runType entities.SyncRunType, trigger, date string, success bool, durationMs int64, salesUpdated int64, itemsFetched int, remainsCount int64, errs []string) {
	run := &entities.SyncRun{
		RunType:      runType,
		Trigger:      trigger,
		Date:         date,
		Status:       entities.SyncRunSuccess,
		DurationMs:   durationMs,
		SalesUpdated: salesUpdated,
		ItemsFetched: itemsFetched,
		RemainsCount: remainsCount,
	}
	if !success {
		run.Status = entities.SyncRunFailed
		run.ErrorMsg = truncate(joinErrors(errs), 500)
	}
	s.LogRun(run)
}

// Prune removes history rows older than the retention window.
func (s *Service) Prune(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.repo.DeleteOlderThan(cutoff)
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
