package database

import (
	"context"
	"testing"
	"time"

	"hotelops/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueEntries_WindowedByTypeAndDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	mk := func(entryType string, date time.Time, amount int64) {
		entry := &models.ManualRevenueEntry{
			ID:        uuid.New().String(),
			Type:      entryType,
			Amount:    decimal.NewFromInt(amount),
			Date:      date,
			CreatedBy: "accounting",
		}
		require.NoError(t, db.CreateRevenueEntry(ctx, entry))
	}

	inWindow := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mk(models.RevenueEntryCollected, inWindow, 1500)
	mk(models.RevenueEntryCollected, outside, 999)
	mk(models.RevenueEntryUpcoming, inWindow, 700)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	collected, err := db.GetRevenueEntriesBetween(ctx, models.RevenueEntryCollected, start, end)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.True(t, collected[0].Amount.Equal(decimal.NewFromInt(1500)))

	upcoming, err := db.GetRevenueEntriesBetween(ctx, models.RevenueEntryUpcoming, start, end)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}

func TestCostEntries_Windowed(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	entry := &models.ManualCostEntry{
		ID:            uuid.New().String(),
		Category:      models.CostCategoryUtilities,
		Amount:        decimal.NewFromInt(500),
		Date:          time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "card",
		CreatedBy:     "accounting",
	}
	require.NoError(t, db.CreateCostEntry(ctx, entry))

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	costs, err := db.GetCostEntriesBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, costs, 1)
	assert.Equal(t, models.CostCategoryUtilities, costs[0].Category)
	assert.True(t, costs[0].Amount.Equal(decimal.NewFromInt(500)))

	empty, err := db.GetCostEntriesBetween(ctx, end.AddDate(0, 1, 0), end.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
