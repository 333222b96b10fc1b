package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rental-quote-service/internal/domain"
	"sort"
)

// SeedCatalog replaces the catalog tables with c in one transaction.
func SeedCatalog(ctx context.Context, db *sql.DB, c *domain.RateCatalog) error {
	if db == nil {
		return errors.New("seed catalog: DB is nil")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"products", "delivery_tiers", "seasonal_rates", "extras", "catalog_settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("seed catalog: clear %s: %w", table, err)
		}
	}

	var version any
	if c.Version != "" {
		version = c.Version
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO catalog_settings (id, version, tax_rate_bp, service_fee_bp, event_max_days)
	VALUES (1, $1, $2, $3, $4);
	`, version, c.TaxRateBP, c.ServiceFeeBP, c.EventMaxDays); err != nil {
		return fmt.Errorf("seed catalog: settings: %w", err)
	}

	ids := make([]string, 0, len(c.Products))
	for id := range c.Products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := c.Products[id]
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, daily_rate_cents, weekly_rate_cents,
			monthly_rate_cents, event_rate_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
		`, p.ID, p.Name, p.Description, int64(p.DailyRate), int64(p.WeeklyRate),
			int64(p.MonthlyRate), int64(p.EventRate)); err != nil {
			return fmt.Errorf("seed catalog: insert product %q: %w", p.ID, err)
		}
	}

	for _, t := range c.DeliveryTiers {
		var maxMiles any
		if !t.Unbounded() {
			maxMiles = t.MaxMiles
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO delivery_tiers (name, min_miles, max_miles, base_fee_cents, per_mile_cents)
		VALUES ($1, $2, $3, $4, $5);
		`, t.Name, t.MinMiles, maxMiles, int64(t.BaseFee), int64(t.PerMile)); err != nil {
			return fmt.Errorf("seed catalog: insert tier %q: %w", t.Name, err)
		}
	}

	for i, s := range c.Seasons {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO seasonal_rates (position, name, start_date, end_date, multiplier_bp)
		VALUES ($1, $2, $3, $4, $5);
		`, i+1, s.Name, s.Start, s.End, s.MultiplierBP); err != nil {
			return fmt.Errorf("seed catalog: insert season %q: %w", s.Name, err)
		}
	}

	for _, e := range c.Extras {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO extras (id, name, unit_price_cents, per_day)
		VALUES ($1, $2, $3, $4);
		`, e.ID, e.Name, int64(e.UnitPrice), e.PerDay); err != nil {
			return fmt.Errorf("seed catalog: insert extra %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed catalog: commit tx: %w", err)
	}
	return nil
}

// SeedBranches upserts the branch directory.
func SeedBranches(ctx context.Context, db *sql.DB, branches []domain.Branch) error {
	if db == nil {
		return errors.New("seed branches: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed branches: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO branches (id, name, address, lon, lat)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		address = EXCLUDED.address,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`)
	if err != nil {
		return fmt.Errorf("seed branches: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range branches {
		var lon, lat any
		if b.Location != nil {
			lon, lat = b.Location.Lon, b.Location.Lat
		}
		if _, err := stmt.ExecContext(ctx, b.ID, b.Name, b.Address, lon, lat); err != nil {
			return fmt.Errorf("seed branches: insert branch %q: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed branches: commit tx: %w", err)
	}
	return nil
}
