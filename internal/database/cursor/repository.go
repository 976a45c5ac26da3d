// Package cursor provides database operations for sync cursors. One cursor
// row exists per remote resource type; it is created lazily on first use and
// mutated only by the reconciler owning that resource.
package cursor

import (
	"time"

	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/entities"
)

// Repository handles sync cursor database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cursor repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the cursor for a resource type, creating it on first
// use.
func (r *Repository) GetOrCreate(resourceType entities.ResourceType) (*entities.SyncCursor, error) {
	var cur entities.SyncCursor
	err := r.db.Where("resource_type = ?", resourceType).First(&cur).Error
	if err == gorm.ErrRecordNotFound {
		cur = entities.SyncCursor{ResourceType: resourceType, LastPage: 1, TotalPages: 1, DailyPage: 1, DailyTotalPages: 1}
		if err := r.db.Create(&cur).Error; err != nil {
			return nil, err
		}
		return &cur, nil
	}
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

// Save persists the cursor after a page or run boundary.
func (r *Repository) Save(cur *entities.SyncCursor) error {
	return r.db.Save(cur).Error
}

// SaveInventoryProgress records the inventory pagination state after a run.
func (r *Repository) SaveInventoryProgress(lastPage, totalPages, totalItems int, complete bool) error {
	cur, err := r.GetOrCreate(entities.ResourceRemains)
	if err != nil {
		return err
	}

	cur.LastPage = lastPage
	cur.TotalPages = totalPages
	cur.TotalItems = totalItems
	cur.IsComplete = complete
	if complete {
		now := time.Now()
		cur.LastFullSync = &now
	}
	return r.db.Save(cur).Error
}

// SaveSalesProgress records the per-date sales pagination state and rolls the
// aggregate counters.
func (r *Repository) SaveSalesProgress(date string, page, totalPages, items int, complete bool) error {
	cur, err := r.GetOrCreate(entities.ResourceSales)
	if err != nil {
		return err
	}

	if cur.CurrentDate != date {
		cur.CurrentDate = date
		cur.DaysProcessed++
	}
	cur.DailyPage = page
	cur.DailyTotalPages = totalPages
	cur.DailyComplete = complete
	cur.TotalItems += items
	if totalPages > 0 {
		cur.AveragePageSize = float64(items) / float64(totalPages)
	}
	if complete {
		now := time.Now()
		cur.LastSyncDate = date
		cur.LastFullSync = &now
	}
	return r.db.Save(cur).Error
}

// Reset drops the cursor for a resource type so the next run starts from
// scratch.
func (r *Repository) Reset(resourceType entities.ResourceType) error {
	return r.db.Where("resource_type = ?", resourceType).Delete(&entities.SyncCursor{}).Error
}
