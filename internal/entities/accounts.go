package entities

import (
	"time"
)

// Doctor is a prescribing doctor with Telegram access to their attributed
// sales. Attribution is done via the unique Code matched against the sale
// notes field.
type Doctor struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:256" json:"name"`
	Profession   string     `gorm:"size:128" json:"profession"`
	Login        string     `gorm:"uniqueIndex;size:100" json:"login"`
	PasswordHash string     `gorm:"size:128" json:"-"`
	Code         string     `gorm:"uniqueIndex;size:64" json:"code"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	ActiveUntil  *time.Time `json:"active_until,omitempty"`

	Activations []ActivationEntry `gorm:"polymorphic:Subject" json:"activations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCurrentlyActive reports whether the doctor may log in right now,
// honouring the temporary-activation deadline.
func (d *Doctor) IsCurrentlyActive() bool {
	if !d.IsActive {
		return false
	}
	if d.ActiveUntil == nil {
		return true
	}
	return time.Now().Before(*d.ActiveUntil)
}

// Supplier is a wholesale supplier account with the same temporary-activation
// model as doctors.
type Supplier struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:256" json:"name"`
	Username     string     `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string     `gorm:"size:128" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	ActiveUntil  *time.Time `json:"active_until,omitempty"`

	Activations []ActivationEntry `gorm:"polymorphic:Subject" json:"activations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Supplier) IsCurrentlyActive() bool {
	if !s.IsActive {
		return false
	}
	if s.ActiveUntil == nil {
		return true
	}
	return time.Now().Before(*s.ActiveUntil)
}

// ActivationEntry is one row of the activation history kept when an admin
// grants a doctor or supplier N months of access.
type ActivationEntry struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SubjectID   uint       `gorm:"index" json:"-"`
	SubjectType string     `gorm:"index;size:20" json:"-"`
	ActivatedAt time.Time  `json:"activated_at"`
	ActiveUntil *time.Time `json:"active_until,omitempty"`
	Months      int        `json:"months"`
	ActivatedBy string     `gorm:"size:100" json:"activated_by"`
}

// Message is an admin broadcast delivered to doctors through the Telegram
// bot. Delivery is tracked per recipient.
type Message struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	Content         string             `gorm:"type:text" json:"content"`
	SentBy          string             `gorm:"size:100;default:admin" json:"sent_by"`
	TotalRecipients int                `json:"total_recipients"`
	DeliveredCount  int                `json:"delivered_count"`
	Recipients      []MessageRecipient `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"recipients,omitempty"`
	CreatedAt       time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type MessageRecipient struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	MessageID   uint       `gorm:"index" json:"-"`
	DoctorID    uint       `gorm:"index" json:"doctor_id"`
	DoctorName  string     `gorm:"size:256" json:"doctor_name"`
	DoctorCode  string     `gorm:"size:64" json:"doctor_code"`
	SentAt      time.Time  `json:"sent_at"`
	Delivered   bool       `json:"delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ChatID      string     `gorm:"size:64" json:"chat_id,omitempty"`
}

// TelegramUser binds a Telegram chat to a doctor or supplier account. The
// bot itself lives outside this service; sync only emits notifications
// toward these bindings.
type TelegramUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    string    `gorm:"uniqueIndex;size:64" json:"chat_id"`
	UserType  string    `gorm:"size:20" json:"user_type"` // "doctor" or "supplier"
	SubjectID uint      `gorm:"index" json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
