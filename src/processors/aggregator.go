package processors

import (
	"time"

	"github.com/username/clubfolio/src/models"
)

// PortfolioAggregator recomputes portfolio-level totals from a holdings
// collection. It does no I/O and keeps no state beyond the injected clock,
// so a snapshot is deterministic given its inputs and the clock.
type PortfolioAggregator struct {
	now func() time.Time
}

// NewPortfolioAggregator builds an aggregator stamping snapshots with the
// given clock. Pass nil to use the wall clock.
func NewPortfolioAggregator(now func() time.Time) *PortfolioAggregator {
	if now == nil {
		now = time.Now
	}
	return &PortfolioAggregator{now: now}
}

// BuildSnapshot derives the aggregate view from holdings and transactions.
// Totals come purely from the holdings; the transactions ride along
// unchanged. CashBalance stays 0 — no ingested source carries a cash
// position.
func (a *PortfolioAggregator) BuildSnapshot(holdings []models.Holding, transactions []models.Transaction) models.PortfolioSnapshot {
	var totalValue, totalCost float64
	for _, h := range holdings {
		totalValue += h.MarketValue
		totalCost += h.CostBasis()
	}

	totalGainLoss := totalValue - totalCost
	totalGainLossPercent := 0.0
	if totalCost > 0 {
		totalGainLossPercent = totalGainLoss / totalCost * 100
	}

	return models.PortfolioSnapshot{
		Holdings:             holdings,
		Transactions:         transactions,
		TotalValue:           totalValue,
		TotalCost:            totalCost,
		TotalGainLoss:        totalGainLoss,
		TotalGainLossPercent: totalGainLossPercent,
		CashBalance:          0,
		LastUpdated:          a.now(),
	}
}
