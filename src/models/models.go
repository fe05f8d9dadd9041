package models

import "time"

// Transaction actions form a closed taxonomy. Free-text action labels from
// brokerage exports are classified into one of these by the parsers.
const (
	ActionBuy        = "BUY"
	ActionSell       = "SELL"
	ActionDividend   = "DIVIDEND"
	ActionDeposit    = "DEPOSIT"
	ActionWithdrawal = "WITHDRAWAL"
	ActionOther      = "OTHER"
)

// SymbolPlaceholder marks non-security ledger entries (cash movements, fees)
// that carry no ticker in the source export.
const SymbolPlaceholder = "--"

// Holding is a normalized current position in a single security.
type Holding struct {
	ID              int64   `json:"id,omitempty"`
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	CostPerShare    float64 `json:"costPerShare"`
	CurrentPrice    float64 `json:"currentPrice"`
	MarketValue     float64 `json:"marketValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
}

// CostBasis is the total amount paid for the position.
func (h Holding) CostBasis() float64 {
	return h.CostPerShare * h.Quantity
}

// Transaction is a single historical ledger entry. Quantity, Price and Fees
// are always non-negative; direction is carried by Action and the sign of
// Amount (negative = cash outflow).
type Transaction struct {
	ID          int64   `json:"id,omitempty"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Action      string  `json:"action"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Fees        float64 `json:"fees"`
	Amount      float64 `json:"amount"`
}

// PortfolioSnapshot is the aggregate holdings+transactions+totals view for
// one user at one point in time. Totals are always derived from the Holdings
// collection, never edited independently.
type PortfolioSnapshot struct {
	Holdings             []Holding     `json:"holdings"`
	Transactions         []Transaction `json:"transactions"`
	TotalValue           float64       `json:"totalValue"`
	TotalCost            float64       `json:"totalCost"`
	TotalGainLoss        float64       `json:"totalGainLoss"`
	TotalGainLossPercent float64       `json:"totalGainLossPercent"`
	CashBalance          float64       `json:"cashBalance"`
	LastUpdated          time.Time     `json:"lastUpdated"`
}
