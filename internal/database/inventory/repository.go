// Package inventory provides database operations for the inventory snapshot.
//
// The snapshot is replaced wholesale on every sync run, so the repository
// exposes delete-all and batched-insert operations rather than row updates.
package inventory

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/osonapteka/backoffice/internal/entities"
)

// Repository handles all inventory record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new inventory repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DeleteAll removes every inventory row and returns how many were removed.
func (r *Repository) DeleteAll() (int64, error) {
	result := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.InventoryRecord{})
	return result.RowsAffected, result.Error
}

// InsertBatches inserts records in fixed-size batches. Conflicting rows are
// skipped and a failed batch is logged without stopping subsequent batches,
// mirroring an unordered bulk write.
func (r *Repository) InsertBatches(records []entities.InventoryRecord, batchSize int) int64 {
	var inserted int64

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[start:end]
		result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch)
		if result.Error != nil {
			log.Printf("Inventory: batch %d-%d insert failed: %v", start, end, result.Error)
			continue
		}
		inserted += result.RowsAffected
	}

	return inserted
}

// Count returns the current number of inventory rows.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.InventoryRecord{}).Count(&count).Error
	return count, err
}

// CountManufacturers returns how many distinct manufacturers are in stock.
func (r *Repository) CountManufacturers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.InventoryRecord{}).Distinct("manufacturer").Count(&count).Error
	return count, err
}

// Hashes returns the content hash of every row keyed by external id.
func (r *Repository) Hashes() (map[string]string, error) {
	var rows []struct {
		ExternalID string
		DataHash   string
	}
	err := r.db.Model(&entities.InventoryRecord{}).Select("external_id", "data_hash").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	hashes := make(map[string]string, len(rows))
	for _, row := range rows {
		hashes[row.ExternalID] = row.DataHash
	}
	return hashes, nil
}

// LowStock returns rows at or below the given quantity threshold, for the
// low-stock notification pass.
func (r *Repository) LowStock(threshold float64, limit int) ([]entities.InventoryRecord, error) {
	var records []entities.InventoryRecord
	err := r.db.Where("quantity > 0 AND quantity <= ?", threshold).
		Order("quantity ASC").Limit(limit).Find(&records).Error
	return records, err
}
