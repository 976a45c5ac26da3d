// Package doctors provides database operations for doctor accounts,
// including the months-based temporary activation the admin panel uses.
package doctors

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/entities"
)

// Repository handles doctor account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new doctors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new doctor with a bcrypt-hashed password.
func (r *Repository) Create(doctor *entities.Doctor, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	doctor.PasswordHash = string(hash)
	return r.db.Create(doctor).Error
}

// CheckPassword verifies a login attempt against the stored hash.
func (r *Repository) CheckPassword(doctor *entities.Doctor, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(doctor.PasswordHash), []byte(password)) == nil
}

func (r *Repository) GetByID(id uint) (*entities.Doctor, error) {
	var doctor entities.Doctor
	err := r.db.Preload("Activations").First(&doctor, id).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *Repository) GetByLogin(login string) (*entities.Doctor, error) {
	var doctor entities.Doctor
	err := r.db.Where("login = ?", login).First(&doctor).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *Repository) GetByCode(code string) (*entities.Doctor, error) {
	var doctor entities.Doctor
	err := r.db.Where("code = ?", code).First(&doctor).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *Repository) List() ([]entities.Doctor, error) {
	var doctors []entities.Doctor
	err := r.db.Order("name ASC").Find(&doctors).Error
	return doctors, err
}

func (r *Repository) Update(doctor *entities.Doctor) error {
	return r.db.Save(doctor).Error
}

func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Doctor{}, id).Error
}

// Activate grants the doctor the given number of months of access and appends
// an activation history entry.
func (r *Repository) Activate(id uint, months int, activatedBy string) (*entities.Doctor, error) {
	doctor, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	until := now.AddDate(0, months, 0)
	doctor.IsActive = true
	doctor.ActiveUntil = &until

	entry := entities.ActivationEntry{
		SubjectID:   doctor.ID,
		SubjectType: "doctors",
		ActivatedAt: now,
		ActiveUntil: &until,
		Months:      months,
		ActivatedBy: activatedBy,
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(doctor).Select("is_active", "active_until").Updates(doctor).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return doctor, nil
}

// Deactivate blocks the doctor's access immediately.
func (r *Repository) Deactivate(id uint) error {
	return r.db.Model(&entities.Doctor{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "active_until": nil}).Error
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Doctor{}).Count(&count).Error
	return count, err
}
