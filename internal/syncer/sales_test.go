package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salesdb "github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/osonkassa"
)

func TestResolveDate_EmptyDefaultsToToday(t *testing.T) {
	date, err := ResolveDate("")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), date)

	date, err = ResolveDate("   ")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), date)
}

func TestResolveDate_NormalizesSeparators(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024.03.15", "2024-03-15"},
		{"  2024-12-31  ", "2024-12-31"},
	}

	for _, tc := range cases {
		date, err := ResolveDate(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, date)
	}
}

func TestResolveDate_RejectsMalformed(t *testing.T) {
	cases := []string{
		"2024-3-15",
		"15-03-2024",
		"garbage",
		"2024-13-40",
		"2024/03/15",
	}

	for _, input := range cases {
		_, err := ResolveDate(input)
		require.Error(t, err, input)

		var invalid *ErrInvalidDate
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, input, invalid.Value)
	}
}

func TestItemsStale(t *testing.T) {
	staleness := 2 * time.Hour
	recent := time.Now().Add(-10 * time.Minute)
	old := time.Now().Add(-3 * time.Hour)

	assert.True(t, itemsStale(salesdb.HeaderMeta{HasItems: false}, staleness),
		"sale without items is always due")
	assert.True(t, itemsStale(salesdb.HeaderMeta{HasItems: true, ItemsLastUpdated: nil}, staleness),
		"unknown fetch time is due")
	assert.False(t, itemsStale(salesdb.HeaderMeta{HasItems: true, ItemsLastUpdated: &recent}, staleness))
	assert.True(t, itemsStale(salesdb.HeaderMeta{HasItems: true, ItemsLastUpdated: &old}, staleness))
}

func TestConvertSaleHeader_ParsesDatesAndDoctorCode(t *testing.T) {
	now := time.Now()
	header := osonkassa.SaleHeader{
		ID:         "sale-1",
		Number:     77,
		Date:       "2024-03-15T14:30:00",
		ModifiedAt: "2024-03-15",
		Notes:      "DOC-42",
		SaleAmount: 12500,
	}

	record := convertSaleHeader(header, now)

	assert.Equal(t, "sale-1", record.ExternalID)
	assert.Equal(t, 2024, record.Date.Year())
	assert.Equal(t, 14, record.Date.Hour())
	require.NotNil(t, record.ModifiedAt)
	assert.Equal(t, time.March, record.ModifiedAt.Month())
	assert.Equal(t, "DOC-42", record.DoctorCode)
	assert.Equal(t, SaleHash(header), record.DataHash)
	assert.Equal(t, now, record.LastUpdated)
}

func TestConvertSaleHeader_UnparseableModifiedAt(t *testing.T) {
	header := osonkassa.SaleHeader{ID: "sale-2", ModifiedAt: "not-a-date"}

	record := convertSaleHeader(header, time.Now())

	assert.Nil(t, record.ModifiedAt)
	assert.True(t, record.Date.IsZero())
}
