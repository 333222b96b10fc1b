package cache

import (
	"rental-quote-service/internal/domain"
	"time"
)

// entryRecord is the serialized form of a cache entry in shared stores.
type entryRecord struct {
	Fingerprint     string    `json:"fingerprint"`
	RawAddress      string    `json:"raw_address"`
	Normalized      string    `json:"normalized_address"`
	BranchID        string    `json:"branch_id"`
	BranchName      string    `json:"branch_name"`
	BranchAddress   string    `json:"branch_address"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationSeconds int       `json:"duration_seconds"`
	IsEstimate      bool      `json:"is_estimate"`
	ComputedAt      time.Time `json:"computed_at"`
	StoredAt        time.Time `json:"stored_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	Generation      uint64    `json:"generation"`
}

func toRecord(e *domain.CacheEntry) entryRecord {
	return entryRecord{
		Fingerprint:     e.Fingerprint,
		RawAddress:      e.Location.Raw,
		Normalized:      e.Location.Normalized,
		BranchID:        e.Result.Branch.ID,
		BranchName:      e.Result.Branch.Name,
		BranchAddress:   e.Result.Branch.Address,
		DistanceMeters:  e.Result.DistanceMeters,
		DurationSeconds: e.Result.DurationSeconds,
		IsEstimate:      e.Result.IsEstimate,
		ComputedAt:      e.Result.ComputedAt,
		StoredAt:        e.StoredAt,
		ExpiresAt:       e.ExpiresAt,
		Generation:      e.Generation,
	}
}

func (r entryRecord) entry() *domain.CacheEntry {
	return &domain.CacheEntry{
		Fingerprint: r.Fingerprint,
		Location: domain.DeliveryLocation{
			Raw:         r.RawAddress,
			Normalized:  r.Normalized,
			Fingerprint: r.Fingerprint,
		},
		Result: domain.DistanceResult{
			Branch: domain.Branch{
				ID:      r.BranchID,
				Name:    r.BranchName,
				Address: r.BranchAddress,
			},
			DistanceMeters:  r.DistanceMeters,
			DurationSeconds: r.DurationSeconds,
			IsEstimate:      r.IsEstimate,
			ComputedAt:      r.ComputedAt,
		},
		StoredAt:   r.StoredAt,
		ExpiresAt:  r.ExpiresAt,
		Generation: r.Generation,
	}
}
