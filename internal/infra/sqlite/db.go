// Package sqlite persists listings, offers, escrow transactions, and the
// ledger in a single local SQLite database (modernc.org/sqlite, pure Go).
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection. Repository types in this package share
// one DB instance.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database inside dir and applies all
// migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	path := filepath.Join(dir, "handleswap.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; WAL keeps readers unblocked during transitions.
	pragmas := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	d := &DB{db: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error { return d.db.Close() }

func (d *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Account listings
		`CREATE TABLE IF NOT EXISTS listings (
			id              TEXT PRIMARY KEY,
			seller_id       TEXT NOT NULL,
			platform        TEXT NOT NULL,
			handle          TEXT NOT NULL,
			followers       INTEGER NOT NULL DEFAULT 0,
			engagement_rate REAL NOT NULL DEFAULT 0,
			monthly_views   INTEGER NOT NULL DEFAULT 0,
			asking_price    INTEGER NOT NULL,
			buy_now_price   INTEGER NOT NULL DEFAULT 0,
			min_offer_bps   INTEGER NOT NULL DEFAULT 0,
			includes_email  INTEGER NOT NULL DEFAULT 0,
			verified_badge  INTEGER NOT NULL DEFAULT 0,
			status          TEXT NOT NULL DEFAULT 'active',
			created_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,

		// Buyer offers
		`CREATE TABLE IF NOT EXISTS offers (
			id         TEXT PRIMARY KEY,
			listing_id TEXT NOT NULL,
			buyer_id   TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'open',
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_listing ON offers(listing_id)`,

		// Escrow transactions: one JSON-serializable document per row;
		// checklist, history, and dispute are stored as JSON columns.
		`CREATE TABLE IF NOT EXISTS transactions (
			id                    TEXT PRIMARY KEY,
			listing_id            TEXT NOT NULL,
			offer_id              TEXT NOT NULL,
			buyer_id              TEXT NOT NULL,
			seller_id             TEXT NOT NULL,
			sale_price            INTEGER NOT NULL,
			escrow_fee            INTEGER NOT NULL DEFAULT 0,
			processing_fee        INTEGER NOT NULL DEFAULT 0,
			platform_fee          INTEGER NOT NULL DEFAULT 0,
			total_buyer_paid      INTEGER NOT NULL DEFAULT 0,
			seller_payout         INTEGER NOT NULL DEFAULT 0,
			status                TEXT NOT NULL,
			payment_ref           TEXT NOT NULL DEFAULT '',
			payment_deadline      TEXT,
			credential_deadline   TEXT,
			verification_deadline TEXT,
			checklist_json        TEXT NOT NULL DEFAULT '[]',
			history_json          TEXT NOT NULL DEFAULT '[]',
			dispute_json          TEXT,
			created_at            TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_buyer ON transactions(buyer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_seller ON transactions(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_status ON transactions(status)`,

		// Double-entry ledger accounts and entries
		`CREATE TABLE IF NOT EXISTS ledger_accounts (
			id        TEXT PRIMARY KEY,
			available INTEGER NOT NULL DEFAULT 0,
			held      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ref        TEXT NOT NULL,
			account    TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			tx_type    TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			balance    INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_ref ON ledger_entries(ref)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account)`,
	}
}
