package ports

import (
	"context"
	"rental-quote-service/internal/domain"
)

// Port: where rate catalog snapshots are loaded from.
type CatalogSource interface {
	// Load returns a complete catalog. Version may be empty, in which case
	// the caller derives one from the content.
	Load(ctx context.Context) (*domain.RateCatalog, error)
}
