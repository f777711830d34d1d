package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS account_groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		group_id TEXT REFERENCES account_groups(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL,
		asset TEXT NOT NULL,
		type TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity DOUBLE PRECISION NOT NULL,
		fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		exchange TEXT NOT NULL DEFAULT '',
		order_type TEXT NOT NULL DEFAULT '',
		account_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_date ON trades (date)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_account ON trades (account_id)`,
	`CREATE TABLE IF NOT EXISTS projections (
		account_id TEXT NOT NULL DEFAULT '',
		position INT NOT NULL,
		asset TEXT NOT NULL,
		type TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (account_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS price_quotes (
		asset TEXT PRIMARY KEY,
		price_usd DOUBLE PRECISION NOT NULL,
		change_24h_pct DOUBLE PRECISION,
		fetched_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the tables the repositories expect. Statements are
// idempotent, so this runs on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
