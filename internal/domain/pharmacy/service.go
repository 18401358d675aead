package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/cache"
)

var (
	ErrNotFound = errors.New("medicine not found")
	// ErrInsufficientStock rejects adjustments that would drive stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

const countKey = "medicines:all"

type Service struct {
	repo  Repository
	cache *cache.Manager
}

func NewService(repo Repository, cacheMgr *cache.Manager) *Service {
	return &Service{repo: repo, cache: cacheMgr}
}

func (s *Service) Add(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, countKey)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medicine) error {
	if m.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, countKey)
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Medicine, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// AdjustStock records a restock (positive delta) or dispense (negative delta).
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	if delta == 0 {
		return 0, fmt.Errorf("delta must not be zero")
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

// Count serves the dashboard total through the cache manager.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.cache.GetOrComputeCount(ctx, countKey, s.repo.Count)
}
