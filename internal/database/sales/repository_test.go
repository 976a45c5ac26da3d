package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/osonapteka/backoffice/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.SaleRecord{}, &entities.SaleItem{}))
	return db
}

func saleWithItems(externalID string, amount float64) *entities.SaleRecord {
	now := time.Now()
	return &entities.SaleRecord{
		ExternalID:       externalID,
		Number:           1,
		SaleAmount:       amount,
		DataHash:         "hash-" + externalID,
		HasItems:         true,
		ItemsLastUpdated: &now,
		LastUpdated:      now,
		Items: []entities.SaleItem{
			{ExternalID: externalID + "-i1", Product: "Paracetamol", Quantity: 2, Amount: amount},
		},
	}
}

func TestUpsertWithItems_ReplacesLineItems(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	record := saleWithItems("sale-1", 5000)
	require.NoError(t, repo.UpsertWithItems(record))

	// Second fetch returns a different item set for the same sale.
	updated := saleWithItems("sale-1", 6000)
	updated.Items = []entities.SaleItem{
		{ExternalID: "sale-1-i2", Product: "Ibuprofen", Quantity: 1, Amount: 6000},
		{ExternalID: "sale-1-i3", Product: "Aspirin", Quantity: 3, Amount: 0},
	}
	require.NoError(t, repo.UpsertWithItems(updated))

	stored, err := repo.GetByExternalID("sale-1")
	require.NoError(t, err)
	assert.Equal(t, float64(6000), stored.SaleAmount)
	require.Len(t, stored.Items, 2, "old items must be gone")

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBulkUpsertHeaders_PreservesItemBookkeeping(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.UpsertWithItems(saleWithItems("sale-1", 5000)))

	// A header-only refresh carries no item state.
	refresh := entities.SaleRecord{
		ExternalID:  "sale-1",
		Number:      1,
		SaleAmount:  5500,
		DataHash:    "hash-v2",
		LastUpdated: time.Now(),
	}
	affected, err := repo.BulkUpsertHeaders([]entities.SaleRecord{refresh}, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stored, err := repo.GetByExternalID("sale-1")
	require.NoError(t, err)
	assert.Equal(t, float64(5500), stored.SaleAmount)
	assert.Equal(t, "hash-v2", stored.DataHash)
	assert.True(t, stored.HasItems, "bookkeeping columns must survive a header refresh")
	assert.NotNil(t, stored.ItemsLastUpdated)
	require.Len(t, stored.Items, 1)
}

func TestGetHeaderMeta(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.UpsertWithItems(saleWithItems("sale-1", 5000)))

	meta, err := repo.GetHeaderMeta([]string{"sale-1", "sale-unknown"})
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.True(t, meta["sale-1"].HasItems)
	assert.Equal(t, "hash-sale-1", meta["sale-1"].DataHash)

	empty, err := repo.GetHeaderMeta(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	old := saleWithItems("sale-old", 100)
	old.CreatedAt = time.Now().AddDate(0, 0, -45)
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, repo.UpsertWithItems(saleWithItems("sale-new", 200)))

	deleted, err := repo.DeleteOlderThan(time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByExternalID("sale-old")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.GetByExternalID("sale-new")
	assert.NoError(t, err)
}

func TestListByDoctorCode(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	attributed := saleWithItems("sale-1", 5000)
	attributed.DoctorCode = "DOC-1"
	require.NoError(t, repo.UpsertWithItems(attributed))
	require.NoError(t, repo.UpsertWithItems(saleWithItems("sale-2", 7000)))

	records, err := repo.ListByDoctorCode("DOC-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sale-1", records[0].ExternalID)
	assert.Len(t, records[0].Items, 1)
}
