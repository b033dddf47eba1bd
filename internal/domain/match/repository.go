package match

import "context"

// Repository exposes match lookup operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
}
