package entities

import (
	"time"
)

// SaleRecord is one POS transaction header, optionally enriched with line
// items. Headers are upserted by external id on every sales sync run; items
// are fetched only when missing or stale.
type SaleRecord struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	ExternalID string `gorm:"uniqueIndex;size:64" json:"id"`

	Branch         string    `gorm:"size:256" json:"branch,omitempty"`
	SaleType       int       `json:"sale_type,omitempty"`
	SaleTypeString string    `gorm:"size:64" json:"sale_type_string,omitempty"`
	Number         int       `json:"number"`
	Date           time.Time `gorm:"index" json:"date"`
	Status         int       `json:"status,omitempty"`
	ShiftNumber    int       `json:"shift_number,omitempty"`
	CustomerName   string    `gorm:"size:256" json:"customer_name,omitempty"`

	HasFiscalReceipt bool   `json:"has_fiscal_receipt"`
	Notes            string `gorm:"size:512" json:"notes,omitempty"`
	// DoctorCode is copied from Notes at write time: the upstream system
	// overloads the free-text notes field to carry the prescribing
	// doctor's code.
	DoctorCode string `gorm:"index;size:64" json:"doctor_code,omitempty"`

	ItemsCount         int     `json:"items_count,omitempty"`
	BuyAmount          float64 `json:"buy_amount,omitempty"`
	DiscountAmount     float64 `json:"discount_amount,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
	SaleAmount         float64 `json:"sale_amount"`
	SoldAmount         float64 `json:"sold_amount,omitempty"`
	VATAmount          float64 `json:"vat_amount,omitempty"`

	PaymentCash       float64 `json:"payment_cash,omitempty"`
	PaymentBankCard   float64 `json:"payment_bank_card,omitempty"`
	PaymentCredit     float64 `json:"payment_credit,omitempty"`
	PaymentUzcard     float64 `json:"payment_uzcard,omitempty"`
	PaymentHumo       float64 `json:"payment_humo,omitempty"`
	PaymentOnline     float64 `json:"payment_online,omitempty"`
	PaymentPayme      float64 `json:"payment_payme,omitempty"`
	PaymentClick      float64 `json:"payment_click,omitempty"`
	PaymentUzum       float64 `json:"payment_uzum,omitempty"`
	PaymentInsurance  float64 `json:"payment_insurance,omitempty"`

	CreatedBy  string     `gorm:"size:128" json:"created_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	ModifiedBy string     `gorm:"size:128" json:"modified_by,omitempty"`
	IsDeleted  bool       `json:"is_deleted"`

	Items []SaleItem `gorm:"foreignKey:SaleRecordID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	// HasItems is true iff Items is non-empty; ItemsLastUpdated gates
	// whether the next sync pass re-fetches the line items.
	HasItems         bool       `gorm:"index" json:"has_items"`
	ItemsLastUpdated *time.Time `json:"items_last_updated,omitempty"`

	IsNotified  bool      `json:"is_notified"`
	DataHash    string    `gorm:"index;size:16" json:"data_hash,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SaleRecord) TableName() string {
	return "sale_records"
}

// SaleItem is one line of a sale: product, quantity and pricing.
type SaleItem struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	SaleRecordID uint   `gorm:"index" json:"-"`
	ExternalID   string `gorm:"size:64" json:"id,omitempty"`

	ProductID string `gorm:"size:64" json:"product_id,omitempty"`
	Product   string `gorm:"size:512" json:"product"`
	Unit      string `gorm:"size:64" json:"unit,omitempty"`
	Series    string `gorm:"size:128" json:"series,omitempty"`

	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	Amount         float64 `json:"amount"`

	CreatedAt time.Time `json:"created_at"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
