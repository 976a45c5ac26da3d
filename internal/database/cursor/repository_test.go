package cursor

import (
	"testing"

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
	require.NoError(t, db.AutoMigrate(&entities.SyncCursor{}))
	return db
}

func TestGetOrCreate_DefaultsOnFirstUse(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	cur, err := repo.GetOrCreate(entities.ResourceRemains)
	require.NoError(t, err)
	assert.Equal(t, entities.ResourceRemains, cur.ResourceType)
	assert.Equal(t, 1, cur.LastPage)
	assert.Equal(t, 1, cur.DailyPage)
	assert.False(t, cur.IsComplete)

	again, err := repo.GetOrCreate(entities.ResourceRemains)
	require.NoError(t, err)
	assert.Equal(t, cur.ID, again.ID, "second call must return the same row")
}

func TestSaveInventoryProgress(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.SaveInventoryProgress(7, 7, 6500, true))

	cur, err := repo.GetOrCreate(entities.ResourceRemains)
	require.NoError(t, err)
	assert.Equal(t, 7, cur.LastPage)
	assert.Equal(t, 7, cur.TotalPages)
	assert.Equal(t, 6500, cur.TotalItems)
	assert.True(t, cur.IsComplete)
	assert.NotNil(t, cur.LastFullSync)
}

func TestSaveSalesProgress_RollsDateCounters(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.SaveSalesProgress("2024-03-15", 2, 2, 120, true))
	require.NoError(t, repo.SaveSalesProgress("2024-03-16", 1, 1, 80, false))

	cur, err := repo.GetOrCreate(entities.ResourceSales)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", cur.CurrentDate)
	assert.Equal(t, 2, cur.DaysProcessed)
	assert.Equal(t, 200, cur.TotalItems, "item counts accumulate across dates")
	assert.False(t, cur.DailyComplete)
	assert.Equal(t, "2024-03-15", cur.LastSyncDate, "only complete runs move the sync date")
}

func TestReset(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.SaveInventoryProgress(3, 3, 100, true))
	require.NoError(t, repo.Reset(entities.ResourceRemains))

	cur, err := repo.GetOrCreate(entities.ResourceRemains)
	require.NoError(t, err)
	assert.Equal(t, 1, cur.LastPage)
	assert.False(t, cur.IsComplete)
}
