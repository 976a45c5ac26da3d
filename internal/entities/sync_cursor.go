package entities

import (
	"time"
)

type ResourceType string

const (
	ResourceRemains ResourceType = "remains"
	ResourceSales   ResourceType = "sales"
)

// SyncCursor records how far a resumable paginated sync has progressed.
// Exactly one row exists per resource type; only the reconciler owning that
// resource mutates it.
type SyncCursor struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ResourceType ResourceType `gorm:"uniqueIndex;size:20" json:"resource_type"`

	// Page-based state for the inventory snapshot.
	LastPage   int  `json:"last_page"`
	TotalPages int  `json:"total_pages"`
	IsComplete bool `json:"is_complete"`

	// Date-based state for sales.
	LastSyncDate    string `gorm:"size:10" json:"last_sync_date,omitempty"`
	CurrentDate     string `gorm:"size:10" json:"current_date,omitempty"`
	DailyPage       int    `json:"daily_page"`
	DailyTotalPages int    `json:"daily_total_pages"`
	DailyComplete   bool   `json:"daily_complete"`

	// Aggregate metadata.
	TotalItems      int        `json:"total_items"`
	LastFullSync    *time.Time `json:"last_full_sync,omitempty"`
	AveragePageSize float64    `json:"average_page_size,omitempty"`
	DaysProcessed   int        `json:"days_processed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncCursor) TableName() string {
	return "sync_cursors"
}
