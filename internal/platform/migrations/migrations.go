// Package migrations applies the wallet schema at startup. Statements are
// idempotent so Apply can run on every boot.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		wallet_address TEXT NOT NULL UNIQUE,
		email TEXT,
		bank_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		transaction_type TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		recipient_address TEXT,
		transaction_hash TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		details TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		loan_amount DOUBLE PRECISION NOT NULL,
		interest_rate DOUBLE PRECISION NOT NULL,
		loan_term_days INTEGER NOT NULL,
		total_repayment DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'approved',
		created_at TIMESTAMPTZ NOT NULL,
		due_date TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_user_created ON loans (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_due_status ON loans (due_date, status)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
