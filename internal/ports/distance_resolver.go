package ports

import (
	"context"
	"rental-quote-service/internal/domain"
)

// Contract for resolving a delivery location to the nearest branch.
type DistanceResolver interface {
	// Return the drive distance from the nearest of origins to destination.
	// Implementations never cache distances.
	Resolve(ctx context.Context, origins []domain.Branch, destination domain.DeliveryLocation) (domain.DistanceResult, error)
}
