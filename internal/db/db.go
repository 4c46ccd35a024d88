package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the Postgres pool and ensures the marketplace schema.
// The pool is handed to callers; nothing here is a package-level global.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pool, nil
}

// ensureSchema creates the marketplace tables if missing. Statements
// are idempotent so startup is safe to repeat.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL CHECK (price > 0),
			location TEXT NOT NULL DEFAULT '',
			schedule_date TIMESTAMPTZ NULL,
			client_id UUID NOT NULL,
			tasker_id UUID NULL,
			status TEXT NOT NULL CHECK (status IN ('posted','assigned','in_progress','completed','cancelled')),
			service_fee NUMERIC(12,2) NOT NULL DEFAULT 50,
			payment_method TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ NULL,
			CHECK ((tasker_id IS NOT NULL) = (status IN ('assigned','in_progress','completed')))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_client ON tasks(client_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS offers (
			id UUID PRIMARY KEY,
			task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			tasker_id UUID NOT NULL,
			client_id UUID NOT NULL,
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			message TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK (status IN ('pending','accepted','rejected','withdrawn','cancelled')),
			date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			date_updated TIMESTAMPTZ NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_task ON offers(task_id, status)`,
		// At most one accepted offer per task, enforced by the store's
		// transaction and belt-and-braces by this partial unique index.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_offers_accepted ON offers(task_id) WHERE status = 'accepted'`,
		`CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY,
			task_id UUID NOT NULL UNIQUE REFERENCES tasks(id),
			client_id UUID NOT NULL,
			tasker_id UUID NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			escrow_held BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL CHECK (status IN ('pending','released','refunded','disputed')),
			method TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			released_at TIMESTAMPTZ NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			task_id UUID NOT NULL UNIQUE REFERENCES tasks(id),
			tasker_id UUID NOT NULL,
			client_id UUID NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id UUID PRIMARY KEY,
			type TEXT NOT NULL CHECK (type IN ('commission','service_fee','payout','subscription','featured')),
			amount NUMERIC(12,2) NOT NULL,
			source_task_id UUID NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_created ON ledger_entries(created_at)`,
		`CREATE TABLE IF NOT EXISTS tasker_ratings (
			tasker_id UUID PRIMARY KEY,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS earnings_summary (
			id TEXT PRIMARY KEY,
			period TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('daily','monthly')),
			commission_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			service_fee_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			subscription_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			featured_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			total_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summary_type_period ON earnings_summary(type, period)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
