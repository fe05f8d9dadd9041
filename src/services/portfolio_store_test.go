package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/clubfolio/src/database"
	"github.com/username/clubfolio/src/logger"
	"github.com/username/clubfolio/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) PortfolioStore {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "store_test.db"))
	return NewPortfolioStore(database.DB)
}

func sampleSnapshot() models.PortfolioSnapshot {
	return models.PortfolioSnapshot{
		Holdings: []models.Holding{
			{Symbol: "AAPL", Name: "APPLE INC", Quantity: 10, CostPerShare: 100, CurrentPrice: 150, MarketValue: 1500, GainLoss: 500, GainLossPercent: 50},
		},
		Transactions: []models.Transaction{
			{Date: "2026-01-15", Action: models.ActionBuy, Symbol: "AAPL", Description: "APPLE INC", Quantity: 10, Price: 150, Fees: 0.65, Amount: -1500.65},
		},
		TotalValue:           1500,
		TotalCost:            1000,
		TotalGainLoss:        500,
		TotalGainLossPercent: 50,
		LastUpdated:          time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestPortfolioStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	userID := int64(1)

	require.NoError(t, store.Save(userID, sampleSnapshot()))

	loaded, err := store.Load(userID)
	require.NoError(t, err)

	require.Len(t, loaded.Holdings, 1)
	assert.Equal(t, "AAPL", loaded.Holdings[0].Symbol)
	assert.Equal(t, 100.0, loaded.Holdings[0].CostPerShare)
	assert.Equal(t, 50.0, loaded.Holdings[0].GainLossPercent)

	require.Len(t, loaded.Transactions, 1)
	assert.Equal(t, "2026-01-15", loaded.Transactions[0].Date)
	assert.Equal(t, -1500.65, loaded.Transactions[0].Amount)

	assert.Equal(t, 1500.0, loaded.TotalValue)
	assert.Equal(t, 50.0, loaded.TotalGainLossPercent)
}

func TestPortfolioStoreLoadEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(42)
	require.NoError(t, err)

	assert.Empty(t, loaded.Holdings)
	assert.Empty(t, loaded.Transactions)
	assert.Equal(t, 0.0, loaded.TotalValue)
	assert.True(t, loaded.LastUpdated.IsZero())
}

func TestPortfolioStoreHoldingsReplacedOnSave(t *testing.T) {
	store := newTestStore(t)
	userID := int64(1)

	require.NoError(t, store.Save(userID, sampleSnapshot()))

	second := sampleSnapshot()
	second.Holdings = []models.Holding{
		{Symbol: "MSFT", Quantity: 5, CostPerShare: 320, MarketValue: 2000},
	}
	require.NoError(t, store.Save(userID, second))

	loaded, err := store.Load(userID)
	require.NoError(t, err)
	require.Len(t, loaded.Holdings, 1, "holdings are replaced wholesale, not accumulated")
	assert.Equal(t, "MSFT", loaded.Holdings[0].Symbol)
}

func TestPortfolioStoreTransactionsAppendBeyondStoredCount(t *testing.T) {
	store := newTestStore(t)
	userID := int64(1)

	first := sampleSnapshot()
	require.NoError(t, store.Save(userID, first))

	// A re-upload re-sends the stored ledger plus one new entry; only the
	// new entry is inserted.
	second := sampleSnapshot()
	second.Transactions = append(second.Transactions,
		models.Transaction{Date: "2026-02-01", Action: models.ActionDeposit, Symbol: models.SymbolPlaceholder, Amount: 500})
	require.NoError(t, store.Save(userID, second))

	loaded, err := store.Load(userID)
	require.NoError(t, err)
	require.Len(t, loaded.Transactions, 2)
	assert.Equal(t, "2026-01-15", loaded.Transactions[0].Date)
	assert.Equal(t, "2026-02-01", loaded.Transactions[1].Date)

	// Saving the identical ledger again inserts nothing.
	require.NoError(t, store.Save(userID, second))
	loaded, err = store.Load(userID)
	require.NoError(t, err)
	assert.Len(t, loaded.Transactions, 2)
}

func TestPortfolioStoreClearAndExists(t *testing.T) {
	store := newTestStore(t)
	userID := int64(1)

	exists, err := store.Exists(userID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(userID, sampleSnapshot()))

	exists, err = store.Exists(userID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Clear(userID))

	exists, err = store.Exists(userID)
	require.NoError(t, err)
	assert.False(t, exists)

	loaded, err := store.Load(userID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Holdings)
	assert.Empty(t, loaded.Transactions)
}

func TestPortfolioStoreIsolatesUsers(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(1, sampleSnapshot()))

	loaded, err := store.Load(2)
	require.NoError(t, err)
	assert.Empty(t, loaded.Holdings)

	require.NoError(t, store.Clear(2))
	exists, err := store.Exists(1)
	require.NoError(t, err)
	assert.True(t, exists, "clearing one user must not touch another")
}
