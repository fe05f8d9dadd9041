package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/username/clubfolio/src/models"
)

// sqlitePortfolioStore persists snapshots in the application database.
//
// Holdings are replaced wholesale on every save, while transactions are an
// append-only ledger: only entries beyond the already-stored count are
// inserted. That positional heuristic assumes re-uploads re-send a strict
// superset in the original order.
type sqlitePortfolioStore struct {
	db *sql.DB
}

func NewPortfolioStore(db *sql.DB) PortfolioStore {
	return &sqlitePortfolioStore{db: db}
}

func (s *sqlitePortfolioStore) Save(userID int64, snapshot models.PortfolioSnapshot) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM holdings WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error clearing holdings for userID %d: %w", userID, err)
	}

	holdingStmt, err := dbTx.Prepare(`
		INSERT INTO holdings (user_id, symbol, name, quantity, cost_per_share, current_price, market_value, gain_loss, gain_loss_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing holdings insert: %w", err)
	}
	defer holdingStmt.Close()

	for _, h := range snapshot.Holdings {
		if _, err := holdingStmt.Exec(userID, h.Symbol, h.Name, h.Quantity, h.CostPerShare,
			h.CurrentPrice, h.MarketValue, h.GainLoss, h.GainLossPercent); err != nil {
			return fmt.Errorf("error inserting holding %s: %w", h.Symbol, err)
		}
	}

	var stored int
	if err := dbTx.QueryRow(`SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&stored); err != nil {
		return fmt.Errorf("error counting stored transactions for userID %d: %w", userID, err)
	}

	if stored < len(snapshot.Transactions) {
		txStmt, err := dbTx.Prepare(`
			INSERT INTO transactions (user_id, date, action, symbol, description, quantity, price, fees, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("error preparing transactions insert: %w", err)
		}
		defer txStmt.Close()

		for _, t := range snapshot.Transactions[stored:] {
			if _, err := txStmt.Exec(userID, t.Date, t.Action, t.Symbol, t.Description,
				t.Quantity, t.Price, t.Fees, t.Amount); err != nil {
				return fmt.Errorf("error inserting transaction (%s %s): %w", t.Date, t.Symbol, err)
			}
		}
	}

	if _, err := dbTx.Exec(`
		INSERT INTO portfolio_summary (user_id, total_value, total_cost, total_gain_loss, total_gain_loss_percent, cash_balance, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_value = excluded.total_value,
			total_cost = excluded.total_cost,
			total_gain_loss = excluded.total_gain_loss,
			total_gain_loss_percent = excluded.total_gain_loss_percent,
			cash_balance = excluded.cash_balance,
			last_updated = excluded.last_updated`,
		userID, snapshot.TotalValue, snapshot.TotalCost, snapshot.TotalGainLoss,
		snapshot.TotalGainLossPercent, snapshot.CashBalance, snapshot.LastUpdated); err != nil {
		return fmt.Errorf("error upserting portfolio summary for userID %d: %w", userID, err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing portfolio save: %w", err)
	}
	return nil
}

func (s *sqlitePortfolioStore) Load(userID int64) (models.PortfolioSnapshot, error) {
	snapshot := models.PortfolioSnapshot{
		Holdings:     []models.Holding{},
		Transactions: []models.Transaction{},
	}

	rows, err := s.db.Query(`
		SELECT id, symbol, name, quantity, cost_per_share, current_price, market_value, gain_loss, gain_loss_percent
		FROM holdings WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return snapshot, fmt.Errorf("error querying holdings for userID %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Name, &h.Quantity, &h.CostPerShare,
			&h.CurrentPrice, &h.MarketValue, &h.GainLoss, &h.GainLossPercent); err != nil {
			return snapshot, fmt.Errorf("error scanning holding row for userID %d: %w", userID, err)
		}
		snapshot.Holdings = append(snapshot.Holdings, h)
	}
	if err := rows.Err(); err != nil {
		return snapshot, fmt.Errorf("error iterating holdings for userID %d: %w", userID, err)
	}

	txRows, err := s.db.Query(`
		SELECT id, date, action, symbol, description, quantity, price, fees, amount
		FROM transactions WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return snapshot, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var t models.Transaction
		if err := txRows.Scan(&t.ID, &t.Date, &t.Action, &t.Symbol, &t.Description,
			&t.Quantity, &t.Price, &t.Fees, &t.Amount); err != nil {
			return snapshot, fmt.Errorf("error scanning transaction row for userID %d: %w", userID, err)
		}
		snapshot.Transactions = append(snapshot.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return snapshot, fmt.Errorf("error iterating transactions for userID %d: %w", userID, err)
	}

	var lastUpdated sql.NullTime
	err = s.db.QueryRow(`
		SELECT total_value, total_cost, total_gain_loss, total_gain_loss_percent, cash_balance, last_updated
		FROM portfolio_summary WHERE user_id = ?`, userID).
		Scan(&snapshot.TotalValue, &snapshot.TotalCost, &snapshot.TotalGainLoss,
			&snapshot.TotalGainLossPercent, &snapshot.CashBalance, &lastUpdated)
	if err != nil && err != sql.ErrNoRows {
		return snapshot, fmt.Errorf("error querying portfolio summary for userID %d: %w", userID, err)
	}
	if lastUpdated.Valid {
		snapshot.LastUpdated = lastUpdated.Time
	} else {
		snapshot.LastUpdated = time.Time{}
	}

	return snapshot, nil
}

func (s *sqlitePortfolioStore) Clear(userID int64) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"holdings", "transactions", "portfolio_summary"} {
		if _, err := dbTx.Exec(`DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("error clearing %s for userID %d: %w", table, userID, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing portfolio clear: %w", err)
	}
	return nil
}

func (s *sqlitePortfolioStore) Exists(userID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM holdings WHERE user_id = ?) +
		       (SELECT COUNT(*) FROM transactions WHERE user_id = ?)`, userID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking portfolio data for userID %d: %w", userID, err)
	}
	return count > 0, nil
}
