package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
)

// PostgresSource reads the catalog tables in a single read-only
// transaction so a refresh never sees a half-applied edit.
type PostgresSource struct {
	db     *sql.DB
	logger logx.Logger
}

func NewPostgresSource(db *sql.DB, logger logx.Logger) *PostgresSource {
	if logger == nil {
		logger = logx.Nop()
	}
	return &PostgresSource{db: db, logger: logger}
}

func (s *PostgresSource) Load(ctx context.Context) (_ *domain.RateCatalog, err error) {
	defer obs.Time(ctx, s.logger, "catalog.postgres.Load")(&err)

	if s.db == nil {
		return nil, errors.New("catalog source: db is nil")
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("load catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c := &domain.RateCatalog{
		Products: map[string]domain.Product{},
		Extras:   map[string]domain.Extra{},
	}

	var version sql.NullString
	err = tx.QueryRowContext(ctx, `
	SELECT version, tax_rate_bp, service_fee_bp, event_max_days
	FROM catalog_settings
	WHERE id = 1;
	`).Scan(&version, &c.TaxRateBP, &c.ServiceFeeBP, &c.EventMaxDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("load catalog: catalog_settings row missing")
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: settings: %w", err)
	}
	c.Version = version.String

	if err := loadProducts(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := loadTiers(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := loadSeasons(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := loadExtras(ctx, tx, c); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("load catalog: commit: %w", err)
	}
	return c, nil
}

func loadProducts(ctx context.Context, tx *sql.Tx, c *domain.RateCatalog) error {
	rows, err := tx.QueryContext(ctx, `
	SELECT id, name, description, daily_rate_cents, weekly_rate_cents,
		monthly_rate_cents, event_rate_cents
	FROM products
	ORDER BY id;
	`)
	if err != nil {
		return fmt.Errorf("load catalog: query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		var daily, weekly, monthly, event int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &daily, &weekly, &monthly, &event); err != nil {
			return fmt.Errorf("load catalog: scan product: %w", err)
		}
		p.DailyRate, p.WeeklyRate = domain.Money(daily), domain.Money(weekly)
		p.MonthlyRate, p.EventRate = domain.Money(monthly), domain.Money(event)
		c.Products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load catalog: product rows: %w", err)
	}
	return nil
}

func loadTiers(ctx context.Context, tx *sql.Tx, c *domain.RateCatalog) error {
	rows, err := tx.QueryContext(ctx, `
	SELECT name, min_miles, max_miles, base_fee_cents, per_mile_cents
	FROM delivery_tiers
	ORDER BY min_miles;
	`)
	if err != nil {
		return fmt.Errorf("load catalog: query delivery tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.DeliveryTier
		var maxMiles sql.NullFloat64
		var base, perMile int64
		if err := rows.Scan(&t.Name, &t.MinMiles, &maxMiles, &base, &perMile); err != nil {
			return fmt.Errorf("load catalog: scan delivery tier: %w", err)
		}
		t.MaxMiles = maxMiles.Float64
		t.BaseFee, t.PerMile = domain.Money(base), domain.Money(perMile)
		c.DeliveryTiers = append(c.DeliveryTiers, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load catalog: delivery tier rows: %w", err)
	}
	return nil
}

func loadSeasons(ctx context.Context, tx *sql.Tx, c *domain.RateCatalog) error {
	rows, err := tx.QueryContext(ctx, `
	SELECT name, start_date, end_date, multiplier_bp
	FROM seasonal_rates
	ORDER BY position;
	`)
	if err != nil {
		return fmt.Errorf("load catalog: query seasonal rates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w domain.SeasonalWindow
		if err := rows.Scan(&w.Name, &w.Start, &w.End, &w.MultiplierBP); err != nil {
			return fmt.Errorf("load catalog: scan seasonal rate: %w", err)
		}
		w.Start, w.End = domain.DateOf(w.Start), domain.DateOf(w.End)
		c.Seasons = append(c.Seasons, w)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load catalog: seasonal rate rows: %w", err)
	}
	return nil
}

func loadExtras(ctx context.Context, tx *sql.Tx, c *domain.RateCatalog) error {
	rows, err := tx.QueryContext(ctx, `
	SELECT id, name, unit_price_cents, per_day
	FROM extras
	ORDER BY id;
	`)
	if err != nil {
		return fmt.Errorf("load catalog: query extras: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.Extra
		var price int64
		if err := rows.Scan(&e.ID, &e.Name, &price, &e.PerDay); err != nil {
			return fmt.Errorf("load catalog: scan extra: %w", err)
		}
		e.UnitPrice = domain.Money(price)
		c.Extras[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load catalog: extra rows: %w", err)
	}
	return nil
}
