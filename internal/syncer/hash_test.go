package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osonapteka/backoffice/internal/osonkassa"
)

func TestInventoryHash_StableForSameContent(t *testing.T) {
	item := osonkassa.RemainsItem{
		ID:       "batch-1",
		Product:  "Paracetamol 500mg",
		Quantity: 42,
	}
	other := item

	assert.Equal(t, InventoryHash(item), InventoryHash(other))
}

func TestInventoryHash_ChangesWithContent(t *testing.T) {
	item := osonkassa.RemainsItem{ID: "batch-1", Product: "Paracetamol 500mg", Quantity: 42}
	changed := item
	changed.Quantity = 41

	assert.NotEqual(t, InventoryHash(item), InventoryHash(changed))
}

func TestSaleHash_ChangesWithContent(t *testing.T) {
	header := osonkassa.SaleHeader{ID: "sale-1", Number: 100, SaleAmount: 5000}
	changed := header
	changed.SaleAmount = 5500

	assert.NotEqual(t, SaleHash(header), SaleHash(changed))
}

func TestHashFormat(t *testing.T) {
	hash := InventoryHash(osonkassa.RemainsItem{ID: "batch-1"})

	assert.Len(t, hash, 16)
	assert.Regexp(t, `^[0-9a-f]{16}$`, hash)
}
