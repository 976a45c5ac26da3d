package runs

import (
	"time"

	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record saves a finished run to the history.
func (r *Repository) Record(run *entities.SyncRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	return r.db.Create(run).Error
}

// ListRecent retrieves runs ordered by most recent first.
func (r *Repository) ListRecent(limit int) ([]entities.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []entities.SyncRun
	err := r.db.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// DeleteOlderThan removes history rows older than a cutoff. Returns the
// number of deleted rows.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.SyncRun{})
	return result.RowsAffected, result.Error
}
