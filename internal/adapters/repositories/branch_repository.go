package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rental-quote-service/internal/domain"
)

// Postgres-backed implementation of the BranchRepository port.
type PostgresBranchRepository struct{ DB *sql.DB }

func NewPostgresBranchRepository(db *sql.DB) *PostgresBranchRepository {
	return &PostgresBranchRepository{DB: db}
}

// Return all branches ordered by id.
func (s *PostgresBranchRepository) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	if s.DB == nil {
		return nil, errors.New("postgres branch repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, address, lon, lat
	FROM branches
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list branches: query branches table: %w", err)
	}
	defer rows.Close()

	branches := make([]domain.Branch, 0, 8)
	for rows.Next() {
		var b domain.Branch
		var lon, lat sql.NullFloat64
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &lon, &lat); err != nil {
			return nil, fmt.Errorf("list branches: scan row: %w", err)
		}
		if lon.Valid && lat.Valid {
			b.Location = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
		}
		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list branches: row iteration: %w", err)
	}

	return branches, nil
}
