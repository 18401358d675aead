package bloodbank

import "context"

type Repository interface {
	List(ctx context.Context) ([]*BloodStock, error)
	GetByGroup(ctx context.Context, group string) (*BloodStock, error)
	// Upsert sets the absolute unit count for a group, creating the row on
	// first use.
	Upsert(ctx context.Context, group string, units int) (*BloodStock, error)
	// Adjust applies delta to a group's units. Returns ErrInsufficientUnits
	// when the result would go negative.
	Adjust(ctx context.Context, group string, delta int) (*BloodStock, error)
}
