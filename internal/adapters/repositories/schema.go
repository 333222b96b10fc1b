package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`
	CREATE TABLE IF NOT EXISTS catalog_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version TEXT,
		tax_rate_bp BIGINT NOT NULL,
		service_fee_bp BIGINT NOT NULL,
		event_max_days INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		daily_rate_cents BIGINT NOT NULL,
		weekly_rate_cents BIGINT NOT NULL,
		monthly_rate_cents BIGINT NOT NULL,
		event_rate_cents BIGINT NOT NULL DEFAULT 0
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS delivery_tiers (
		name TEXT PRIMARY KEY,
		min_miles DOUBLE PRECISION NOT NULL,
		max_miles DOUBLE PRECISION,
		base_fee_cents BIGINT NOT NULL,
		per_mile_cents BIGINT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS seasonal_rates (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		multiplier_bp BIGINT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS extras (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit_price_cents BIGINT NOT NULL,
		per_day BOOLEAN NOT NULL DEFAULT FALSE
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS branches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		lon DOUBLE PRECISION,
		lat DOUBLE PRECISION
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS location_cache (
		fingerprint TEXT PRIMARY KEY,
		raw_address TEXT NOT NULL,
		normalized_address TEXT NOT NULL,
		branch_id TEXT NOT NULL,
		branch_name TEXT NOT NULL,
		branch_address TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		is_estimate BOOLEAN NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL,
		stored_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		generation BIGINT NOT NULL
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_location_cache_expires_at
	ON location_cache(expires_at);
	`,
}

// InitSchema creates every table the service uses. It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
