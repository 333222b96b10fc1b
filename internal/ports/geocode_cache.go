package ports

import (
	"context"
	"rental-quote-service/internal/domain"
)

// Persistent address -> coordinate memoization used by the distance resolver.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
