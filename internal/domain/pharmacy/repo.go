package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Medicine, int, error)
	// AdjustStock applies delta to the stock level and returns the new value.
	// Returns ErrInsufficientStock when the result would go negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
	Count(ctx context.Context) (int, error)
}
