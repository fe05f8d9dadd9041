package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/clubfolio/src/models"
)

var fixedTime = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestBuildSnapshotTotals(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", Quantity: 10, CostPerShare: 100, MarketValue: 1500},
		{Symbol: "MSFT", Quantity: 5, CostPerShare: 320, MarketValue: 2000},
	}
	transactions := []models.Transaction{
		{Date: "2026-01-15", Action: models.ActionBuy, Symbol: "AAPL"},
	}

	snapshot := NewPortfolioAggregator(fixedClock).BuildSnapshot(holdings, transactions)

	assert.Equal(t, 3500.0, snapshot.TotalValue)
	assert.Equal(t, 2600.0, snapshot.TotalCost)
	assert.Equal(t, 900.0, snapshot.TotalGainLoss)
	assert.InDelta(t, 34.6153846, snapshot.TotalGainLossPercent, 1e-6)
	assert.Equal(t, 0.0, snapshot.CashBalance)
	assert.Equal(t, fixedTime, snapshot.LastUpdated)
	assert.Equal(t, holdings, snapshot.Holdings)
	assert.Equal(t, transactions, snapshot.Transactions)
}

func TestBuildSnapshotTotalValueMatchesHoldingSum(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "A", MarketValue: 0.1},
		{Symbol: "B", MarketValue: 0.2},
		{Symbol: "C", MarketValue: 0.3},
	}
	snapshot := NewPortfolioAggregator(fixedClock).BuildSnapshot(holdings, nil)

	var sum float64
	for _, h := range snapshot.Holdings {
		sum += h.MarketValue
	}
	assert.InDelta(t, sum, snapshot.TotalValue, 1e-6)
}

func TestBuildSnapshotEmptyInputs(t *testing.T) {
	snapshot := NewPortfolioAggregator(fixedClock).BuildSnapshot(nil, nil)

	assert.Equal(t, 0.0, snapshot.TotalValue)
	assert.Equal(t, 0.0, snapshot.TotalCost)
	assert.Equal(t, 0.0, snapshot.TotalGainLoss)
	assert.Equal(t, 0.0, snapshot.TotalGainLossPercent, "zero cost must not divide")
	assert.Equal(t, fixedTime, snapshot.LastUpdated)
}

func TestNewPortfolioAggregatorNilClock(t *testing.T) {
	before := time.Now()
	snapshot := NewPortfolioAggregator(nil).BuildSnapshot(nil, nil)
	assert.False(t, snapshot.LastUpdated.Before(before))
}
