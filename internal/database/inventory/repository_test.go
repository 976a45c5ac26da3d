package inventory

import (
	"fmt"
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
	require.NoError(t, db.AutoMigrate(&entities.InventoryRecord{}))
	return db
}

func makeRecords(n int) []entities.InventoryRecord {
	now := time.Now()
	records := make([]entities.InventoryRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, entities.InventoryRecord{
			ExternalID:   fmt.Sprintf("batch-%d", i),
			Product:      fmt.Sprintf("Product %d", i),
			Manufacturer: fmt.Sprintf("Maker %d", i%3),
			Quantity:     float64(i),
			Unit:         "pack",
			LastUpdated:  now,
		})
	}
	return records
}

func TestInsertBatches(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	inserted := repo.InsertBatches(makeRecords(25), 10)
	assert.Equal(t, int64(25), inserted)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)
}

func TestInsertBatches_SkipsConflicts(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.Equal(t, int64(5), repo.InsertBatches(makeRecords(5), 10))
	// Same external ids again: all rows conflict, none inserted.
	assert.Equal(t, int64(0), repo.InsertBatches(makeRecords(5), 10))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestDeleteAll(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	repo.InsertBatches(makeRecords(10), 10)

	deleted, err := repo.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, int64(10), deleted)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCountManufacturers(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	repo.InsertBatches(makeRecords(10), 10)

	count, err := repo.CountManufacturers()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLowStock(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	// Quantities 0..9; zero-quantity rows are out of stock, not low.
	repo.InsertBatches(makeRecords(10), 10)

	records, err := repo.LowStock(3, 100)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, float64(1), records[0].Quantity, "ordered by quantity ascending")

	limited, err := repo.LowStock(3, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestHashes(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	records := makeRecords(3)
	for i := range records {
		records[i].DataHash = fmt.Sprintf("hash-%d", i)
	}
	repo.InsertBatches(records, 10)

	hashes, err := repo.Hashes()
	require.NoError(t, err)
	require.Len(t, hashes, 3)
	assert.Equal(t, "hash-1", hashes["batch-1"])
}
