package pharmacy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/cache"
)

type mockRepo struct {
	medicines  map[uuid.UUID]*Medicine
	countCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (m *mockRepo) Create(_ context.Context, med *Medicine) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	m.medicines[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medicine) error {
	if _, ok := m.medicines[med.ID]; !ok {
		return ErrNotFound
	}
	m.medicines[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.medicines[id]; !ok {
		return ErrNotFound
	}
	delete(m.medicines, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Medicine, int, error) {
	var items []*Medicine
	for _, med := range m.medicines {
		items = append(items, med)
	}
	return items, len(items), nil
}

func (m *mockRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (int, error) {
	med, ok := m.medicines[id]
	if !ok {
		return 0, ErrNotFound
	}
	if med.Stock+delta < 0 {
		return 0, ErrInsufficientStock
	}
	med.Stock += delta
	return med.Stock, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	m.countCalls++
	return len(m.medicines), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, cache.NewManager(cache.NewMemoryStore())), repo
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Add(ctx, &Medicine{}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Add(ctx, &Medicine{Name: "X", Price: -1}); err == nil {
		t.Error("expected error for negative price")
	}
	if err := svc.Add(ctx, &Medicine{Name: "X", Stock: -1}); err == nil {
		t.Error("expected error for negative stock")
	}
}

func TestAdjustStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	med := &Medicine{Name: "Paracetamol", Stock: 10}
	if err := svc.Add(ctx, med); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stock, err := svc.AdjustStock(ctx, med.ID, -4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stock != 6 {
		t.Errorf("expected stock 6, got %d", stock)
	}

	if _, err := svc.AdjustStock(ctx, med.ID, -7); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := svc.AdjustStock(ctx, med.ID, 0); err == nil {
		t.Error("expected error for zero delta")
	}
}

func TestCount_UsesCacheUntilInvalidated(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	if err := svc.Add(ctx, &Medicine{Name: "Ibuprofen", Stock: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		n, err := svc.Count(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("expected count 1, got %d", n)
		}
	}
	if repo.countCalls != 1 {
		t.Errorf("expected a single backend count, got %d", repo.countCalls)
	}

	// Adding a medicine invalidates the cached count.
	if err := svc.Add(ctx, &Medicine{Name: "Aspirin", Stock: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2 after invalidation, got %d", n)
	}
	if repo.countCalls != 2 {
		t.Errorf("expected recompute after invalidation, got %d calls", repo.countCalls)
	}
}
