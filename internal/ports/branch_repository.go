package ports

import (
	"context"
	"rental-quote-service/internal/domain"
)

// Port: a boundary for retrieving service branches.
type BranchRepository interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
}
