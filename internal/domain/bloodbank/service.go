package bloodbank

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("blood group not found")
	// ErrInsufficientUnits rejects consumption beyond the available units.
	ErrInsufficientUnits = errors.New("insufficient units in stock")
	ErrInvalidGroup      = errors.New("invalid blood group")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*BloodStock, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, group string) (*BloodStock, error) {
	if !IsValidGroup(group) {
		return nil, ErrInvalidGroup
	}
	return s.repo.GetByGroup(ctx, group)
}

// SetUnits fixes the stock level of a group, e.g. after a physical audit.
func (s *Service) SetUnits(ctx context.Context, group string, units int) (*BloodStock, error) {
	if !IsValidGroup(group) {
		return nil, ErrInvalidGroup
	}
	if units < 0 {
		return nil, fmt.Errorf("units must not be negative")
	}
	return s.repo.Upsert(ctx, group, units)
}

// Donate records incoming units.
func (s *Service) Donate(ctx context.Context, group string, units int) (*BloodStock, error) {
	if !IsValidGroup(group) {
		return nil, ErrInvalidGroup
	}
	if units <= 0 {
		return nil, fmt.Errorf("units must be positive")
	}
	return s.repo.Adjust(ctx, group, units)
}

// Consume withdraws units for a transfusion. Underflow surfaces as
// ErrInsufficientUnits.
func (s *Service) Consume(ctx context.Context, group string, units int) (*BloodStock, error) {
	if !IsValidGroup(group) {
		return nil, ErrInvalidGroup
	}
	if units <= 0 {
		return nil, fmt.Errorf("units must be positive")
	}
	return s.repo.Adjust(ctx, group, -units)
}
