package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rental-quote-service/internal/domain"
	"rental-quote-service/internal/logx"
	"rental-quote-service/internal/platform/obs"
	"time"
)

// SQLLocationStore keeps location cache entries in the Postgres
// location_cache table so they survive restarts and are shared by replicas.
type SQLLocationStore struct {
	db     *sql.DB
	logger logx.Logger
	now    func() time.Time
}

func NewSQLLocationStore(db *sql.DB, logger logx.Logger) *SQLLocationStore {
	if logger == nil {
		logger = logx.Nop()
	}
	return &SQLLocationStore{db: db, logger: logger, now: time.Now}
}

// Get returns the unexpired entry for fingerprint, or nil if there is none.
func (s *SQLLocationStore) Get(ctx context.Context, fingerprint string) (_ *domain.CacheEntry, err error) {
	defer obs.Time(ctx, s.logger, "location.store.Get")(&err)

	if s.db == nil {
		return nil, errors.New("location store: db is nil")
	}

	var r entryRecord
	var gen int64
	err = s.db.QueryRowContext(ctx, `
	SELECT fingerprint, raw_address, normalized_address,
		branch_id, branch_name, branch_address,
		distance_meters, duration_seconds, is_estimate,
		computed_at, stored_at, expires_at, generation
	FROM location_cache
	WHERE fingerprint = $1 AND expires_at > $2;
	`, fingerprint, s.now()).Scan(
		&r.Fingerprint, &r.RawAddress, &r.Normalized,
		&r.BranchID, &r.BranchName, &r.BranchAddress,
		&r.DistanceMeters, &r.DurationSeconds, &r.IsEstimate,
		&r.ComputedAt, &r.StoredAt, &r.ExpiresAt, &gen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location cache %s: %w", fingerprint, err)
	}
	r.Generation = uint64(gen)

	return r.entry(), nil
}

// Put replaces the row for the entry's fingerprint wholesale.
func (s *SQLLocationStore) Put(ctx context.Context, e *domain.CacheEntry) error {
	if s.db == nil {
		return errors.New("location store: db is nil")
	}

	r := toRecord(e)
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO location_cache (
		fingerprint, raw_address, normalized_address,
		branch_id, branch_name, branch_address,
		distance_meters, duration_seconds, is_estimate,
		computed_at, stored_at, expires_at, generation)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (fingerprint) DO UPDATE
	SET raw_address = EXCLUDED.raw_address,
		normalized_address = EXCLUDED.normalized_address,
		branch_id = EXCLUDED.branch_id,
		branch_name = EXCLUDED.branch_name,
		branch_address = EXCLUDED.branch_address,
		distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		is_estimate = EXCLUDED.is_estimate,
		computed_at = EXCLUDED.computed_at,
		stored_at = EXCLUDED.stored_at,
		expires_at = EXCLUDED.expires_at,
		generation = EXCLUDED.generation;
	`,
		r.Fingerprint, r.RawAddress, r.Normalized,
		r.BranchID, r.BranchName, r.BranchAddress,
		r.DistanceMeters, r.DurationSeconds, r.IsEstimate,
		r.ComputedAt, r.StoredAt, r.ExpiresAt, int64(r.Generation),
	)
	if err != nil {
		return fmt.Errorf("insert location cache %s: %w", r.Fingerprint, err)
	}
	return nil
}

// Delete removes rows whose fingerprint or normalized address matches pattern.
func (s *SQLLocationStore) Delete(ctx context.Context, pattern string) (int, error) {
	if s.db == nil {
		return 0, errors.New("location store: db is nil")
	}

	like := domain.CompilePattern(pattern).SQLLike()
	res, err := s.db.ExecContext(ctx, `
	DELETE FROM location_cache
	WHERE fingerprint LIKE $1 ESCAPE '\'
		OR normalized_address LIKE $1 ESCAPE '\';
	`, like)
	if err != nil {
		return 0, fmt.Errorf("delete location cache %q: %w", pattern, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete location cache %q: rows affected: %w", pattern, err)
	}
	return int(n), nil
}
