package ports

import (
	"context"
	"rental-quote-service/internal/domain"
)

// Port: a shared second-level store for location cache entries.
// Entries carry their own expiry; Get never returns an expired entry.
type DistanceStore interface {
	Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
	// Delete removes entries whose fingerprint or normalized address matches
	// the glob pattern and returns how many were removed.
	Delete(ctx context.Context, pattern string) (int, error)
}
