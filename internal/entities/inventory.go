package entities

import (
	"time"
)

// PackQuantity splits a stock amount into whole packages and loose pieces,
// mirroring the POS system's quantities pair.
type PackQuantity struct {
	Units  float64 `json:"units"`
	Pieces float64 `json:"pieces"`
}

// InventoryRecord is one point-in-time stock row for a product batch at a
// branch. The whole table is replaced on every inventory sync run; the POS
// remains listing is the source of truth for what exists now.
type InventoryRecord struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	ExternalID string `gorm:"uniqueIndex;size:64" json:"id"`

	BranchID  string `gorm:"size:64" json:"branch_id,omitempty"`
	Branch    string `gorm:"size:256" json:"branch,omitempty"`
	ProductID string `gorm:"index;size:64" json:"product_id,omitempty"`
	BatchID   string `gorm:"size:64" json:"batch_id,omitempty"`

	Code              int    `json:"code,omitempty"`
	Product           string `gorm:"index;size:512" json:"product"`
	Manufacturer      string `gorm:"index;size:256" json:"manufacturer,omitempty"`
	Country           string `gorm:"size:128" json:"country,omitempty"`
	InternationalName string `gorm:"size:512" json:"international_name,omitempty"`
	PharmGroup        string `gorm:"size:256" json:"pharm_group,omitempty"`
	Category          string `gorm:"size:256" json:"category,omitempty"`
	Unit              string `gorm:"size:64" json:"unit,omitempty"`
	PieceCount        int    `json:"piece_count,omitempty"`
	Barcode           string `gorm:"size:64" json:"barcode,omitempty"`

	Quantity         float64      `json:"quantity"`
	Quantities       PackQuantity `gorm:"embedded;embeddedPrefix:qty_" json:"quantities"`
	BookedQuantity   float64      `json:"booked_quantity,omitempty"`
	BookedQuantities PackQuantity `gorm:"embedded;embeddedPrefix:booked_qty_" json:"booked_quantities"`

	BuyPrice   float64 `json:"buy_price,omitempty"`
	SalePrice  float64 `json:"sale_price,omitempty"`
	VAT        float64 `json:"vat,omitempty"`
	Markup     float64 `json:"markup,omitempty"`
	BuyAmount  float64 `json:"buy_amount,omitempty"`
	SaleAmount float64 `json:"sale_amount,omitempty"`

	Series           string `gorm:"size:128" json:"series,omitempty"`
	ShelfLife        string `gorm:"size:32" json:"shelf_life,omitempty"`
	Supplier         string `gorm:"size:256" json:"supplier,omitempty"`
	SupplyDate       string `gorm:"size:32" json:"supply_date,omitempty"`
	Location         string `gorm:"size:128" json:"location,omitempty"`
	StorageCondition string `gorm:"size:256" json:"storage_condition,omitempty"`

	// DataHash digests the meaningful fields above; volatile bookkeeping
	// fields are excluded so an unchanged row keeps a stable hash.
	DataHash    string    `gorm:"index;size:16" json:"data_hash,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (InventoryRecord) TableName() string {
	return "inventory_records"
}
