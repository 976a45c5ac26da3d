package entities

import "time"

type SyncRunType string

const (
	SyncRunFull      SyncRunType = "full"
	SyncRunSalesOnly SyncRunType = "sales"
)

type SyncRunStatus string

const (
	SyncRunSuccess SyncRunStatus = "success"
	SyncRunFailed  SyncRunStatus = "failed"
)

// SyncRun is one row of the run history kept for troubleshooting: which
// trigger ran, which date it covered and what it changed.
type SyncRun struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	RunType      SyncRunType   `gorm:"index;size:20" json:"run_type"`
	Trigger      string        `gorm:"size:20" json:"trigger"` // "schedule", "manual", "cli"
	Date         string        `gorm:"size:10" json:"date"`
	Status       SyncRunStatus `gorm:"size:20" json:"status"`
	DurationMs   int64         `json:"duration_ms"`
	SalesUpdated int64         `json:"sales_updated"`
	ItemsFetched int           `json:"items_fetched"`
	RemainsCount int64         `json:"remains_count"`
	ErrorMsg     string        `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
