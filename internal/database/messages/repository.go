// Package messages provides database operations for admin broadcasts and
// their per-recipient delivery tracking.
package messages

import (
	"time"

	"gorm.io/gorm"

	"github.com/osonapteka/backoffice/internal/entities"
)

// Repository handles broadcast message database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new messages repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a broadcast together with its recipient rows.
func (r *Repository) Create(content, sentBy string, recipients []entities.MessageRecipient) (*entities.Message, error) {
	now := time.Now()
	for i := range recipients {
		recipients[i].SentAt = now
	}

	msg := &entities.Message{
		Content:         content,
		SentBy:          sentBy,
		TotalRecipients: len(recipients),
		Recipients:      recipients,
	}
	if err := r.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkDelivered flags one recipient as delivered and bumps the parent
// counter. Called by the bot once Telegram accepts the message.
func (r *Repository) MarkDelivered(messageID, doctorID uint, chatID string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.MessageRecipient{}).
			Where("message_id = ? AND doctor_id = ? AND delivered = ?", messageID, doctorID, false).
			Updates(map[string]any{"delivered": true, "delivered_at": now, "chat_id": chatID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&entities.Message{}).Where("id = ?", messageID).
			UpdateColumn("delivered_count", gorm.Expr("delivered_count + ?", result.RowsAffected)).Error
	})
}

// GetByID loads one broadcast with its recipients.
func (r *Repository) GetByID(id uint) (*entities.Message, error) {
	var msg entities.Message
	err := r.db.Preload("Recipients").First(&msg, id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListRecent returns the latest broadcasts, newest first.
func (r *Repository) ListRecent(limit int) ([]entities.Message, error) {
	var msgs []entities.Message
	err := r.db.Preload("Recipients").Order("created_at DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Message{}, id).Error
}
