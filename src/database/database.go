package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/clubfolio/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	}
	migrateHoldingsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		name TEXT,
		quantity REAL NOT NULL,
		cost_per_share REAL,
		current_price REAL,
		market_value REAL,
		gain_loss REAL,
		gain_loss_percent REAL,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		action TEXT NOT NULL,
		symbol TEXT,
		description TEXT,
		quantity REAL,
		price REAL,
		fees REAL,
		amount REAL,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS portfolio_summary (
		user_id INTEGER PRIMARY KEY,
		total_value REAL NOT NULL DEFAULT 0,
		total_cost REAL NOT NULL DEFAULT 0,
		total_gain_loss REAL NOT NULL DEFAULT 0,
		total_gain_loss_percent REAL NOT NULL DEFAULT 0,
		cash_balance REAL NOT NULL DEFAULT 0,
		last_updated TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	`

	if _, err = DB.Exec(createTableStatement); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	}
}

// migrateHoldingsTable adds columns introduced after the first holdings
// schema shipped. SQLite has no IF NOT EXISTS for columns, so existence is
// checked through PRAGMA table_info.
func migrateHoldingsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='holdings'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'holdings' table", "error", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(holdings)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'holdings'", "error", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk, notnullVal int
		var name, dataType string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'holdings'", "error", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'holdings'", "error", err)
		}
		return
	}

	if _, ok := columnExists["gain_loss_percent"]; !ok {
		if _, err := DB.Exec("ALTER TABLE holdings ADD COLUMN gain_loss_percent REAL"); err != nil {
			logger.L.Error("Error adding 'gain_loss_percent' column to 'holdings' table", "error", err)
		} else {
			logger.L.Info("Added 'gain_loss_percent' column to 'holdings' table")
		}
	}
	if _, ok := columnExists["name"]; !ok {
		if _, err := DB.Exec("ALTER TABLE holdings ADD COLUMN name TEXT"); err != nil {
			logger.L.Error("Error adding 'name' column to 'holdings' table", "error", err)
		} else {
			logger.L.Info("Added 'name' column to 'holdings' table")
		}
	}
}
