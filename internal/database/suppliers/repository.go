// Package suppliers provides database operations for supplier accounts.
package suppliers

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/entities"
)

// Repository handles supplier account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new suppliers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new supplier with a bcrypt-hashed password.
func (r *Repository) Create(supplier *entities.Supplier, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	supplier.PasswordHash = string(hash)
	return r.db.Create(supplier).Error
}

// CheckPassword verifies a login attempt against the stored hash.
func (r *Repository) CheckPassword(supplier *entities.Supplier, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(supplier.PasswordHash), []byte(password)) == nil
}

func (r *Repository) GetByID(id uint) (*entities.Supplier, error) {
	var supplier entities.Supplier
	err := r.db.Preload("Activations").First(&supplier, id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *Repository) GetByUsername(username string) (*entities.Supplier, error) {
	var supplier entities.Supplier
	err := r.db.Where("username = ?", username).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *Repository) List() ([]entities.Supplier, error) {
	var suppliers []entities.Supplier
	err := r.db.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *Repository) Update(supplier *entities.Supplier) error {
	return r.db.Save(supplier).Error
}

func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Supplier{}, id).Error
}

// Activate grants the supplier the given number of months of access.
func (r *Repository) Activate(id uint, months int, activatedBy string) (*entities.Supplier, error) {
	supplier, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	until := now.AddDate(0, months, 0)
	supplier.IsActive = true
	supplier.ActiveUntil = &until

	entry := entities.ActivationEntry{
		SubjectID:   supplier.ID,
		SubjectType: "suppliers",
		ActivatedAt: now,
		ActiveUntil: &until,
		Months:      months,
		ActivatedBy: activatedBy,
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(supplier).Select("is_active", "active_until").Updates(supplier).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// Deactivate blocks the supplier's access immediately.
func (r *Repository) Deactivate(id uint) error {
	return r.db.Model(&entities.Supplier{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "active_until": nil}).Error
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Supplier{}).Count(&count).Error
	return count, err
}
