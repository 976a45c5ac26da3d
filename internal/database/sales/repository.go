// Package sales provides database operations for sale records and their
// line items. Headers are upserted by external id; item rows are replaced
// atomically with their parent.
package sales

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/osonapteka/backoffice/internal/entities"
)

// headerColumns are the columns refreshed on a header-only upsert. The item
// bookkeeping columns (has_items, items_last_updated, is_notified) and
// created_at are deliberately left untouched.
var headerColumns = []string{
	"branch", "sale_type", "sale_type_string", "number", "date", "status",
	"shift_number", "customer_name", "has_fiscal_receipt", "notes",
	"doctor_code", "items_count", "buy_amount", "discount_amount",
	"discount_percentage", "sale_amount", "sold_amount", "vat_amount",
	"payment_cash", "payment_bank_card", "payment_credit", "payment_uzcard",
	"payment_humo", "payment_online", "payment_payme", "payment_click",
	"payment_uzum", "payment_insurance", "created_by", "modified_at",
	"modified_by", "is_deleted", "data_hash", "last_updated", "updated_at",
}

// HeaderMeta is the slice of a stored sale the reconciler needs to decide
// whether line items must be re-fetched.
type HeaderMeta struct {
	ExternalID       string
	HasItems         bool
	ItemsLastUpdated *time.Time
	DataHash         string
}

// Repository handles all sale record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sales repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetHeaderMeta loads the item-freshness metadata for the given external ids.
func (r *Repository) GetHeaderMeta(externalIDs []string) (map[string]HeaderMeta, error) {
	meta := make(map[string]HeaderMeta, len(externalIDs))
	if len(externalIDs) == 0 {
		return meta, nil
	}

	var rows []HeaderMeta
	err := r.db.Model(&entities.SaleRecord{}).
		Select("external_id", "has_items", "items_last_updated", "data_hash").
		Where("external_id IN ?", externalIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		meta[row.ExternalID] = row
	}
	return meta, nil
}

// BulkUpsertHeaders upserts header fields for the given records in batches,
// keyed by external id. Item bookkeeping fields are preserved.
func (r *Repository) BulkUpsertHeaders(records []entities.SaleRecord, batchSize int) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var affected int64
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[start:end]
		result := r.db.Omit("Items").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(headerColumns),
		}).Create(&batch)
		if result.Error != nil {
			return affected, result.Error
		}
		affected += result.RowsAffected
	}
	return affected, nil
}

// UpsertWithItems persists a full sale: header plus its replacement line
// items. Existing items of the sale are dropped first so the stored list
// always mirrors the latest fetch.
func (r *Repository) UpsertWithItems(record *entities.SaleRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing entities.SaleRecord
		err := tx.Select("id").Where("external_id = ?", record.ExternalID).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return tx.Create(record).Error
		case err != nil:
			return err
		}

		record.ID = existing.ID
		for i := range record.Items {
			record.Items[i].SaleRecordID = existing.ID
		}

		if err := tx.Where("sale_record_id = ?", existing.ID).Delete(&entities.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(record).Error
	})
}

// GetByExternalID loads one sale with its items.
func (r *Repository) GetByExternalID(externalID string) (*entities.SaleRecord, error) {
	var record entities.SaleRecord
	err := r.db.Preload("Items").Where("external_id = ?", externalID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Count returns the total number of stored sales.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.SaleRecord{}).Count(&count).Error
	return count, err
}

// CountWithItems returns how many sales have their line items attached.
func (r *Repository) CountWithItems() (int64, error) {
	var count int64
	err := r.db.Model(&entities.SaleRecord{}).Where("has_items = ?", true).Count(&count).Error
	return count, err
}

// CountCreatedSince returns how many sales were first stored after t.
func (r *Repository) CountCreatedSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.SaleRecord{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}

// DeleteOlderThan prunes sales first stored before the cutoff, for the daily
// retention cleanup. Child items go with them via the cascade constraint.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.SaleRecord{})
	return result.RowsAffected, result.Error
}

// ListByDoctorCode returns the most recent sales attributed to a doctor.
func (r *Repository) ListByDoctorCode(code string, limit int) ([]entities.SaleRecord, error) {
	var records []entities.SaleRecord
	err := r.db.Preload("Items").Where("doctor_code = ?", code).
		Order("date DESC").Limit(limit).Find(&records).Error
	return records, err
}
