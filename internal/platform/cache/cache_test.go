package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManager_ComputesOnMiss(t *testing.T) {
	m := NewManager(NewMemoryStore())
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	n, err := m.GetOrComputeCount(context.Background(), "appointments:all", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
	if calls != 1 {
		t.Errorf("expected 1 compute call, got %d", calls)
	}
}

func TestManager_ServesFromCache(t *testing.T) {
	m := NewManager(NewMemoryStore())
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return 7, nil
	}

	ctx := context.Background()
	m.GetOrComputeCount(ctx, "k", fn)
	n, err := m.GetOrComputeCount(ctx, "k", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7, got %d", n)
	}
	if calls != 1 {
		t.Errorf("expected cached value to skip recompute, got %d calls", calls)
	}
}

func TestManager_InvalidateForcesRecompute(t *testing.T) {
	m := NewManager(NewMemoryStore())
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	m.GetOrComputeCount(ctx, "k", fn)
	m.Invalidate(ctx, "k")
	n, _ := m.GetOrComputeCount(ctx, "k", fn)
	if n != 2 {
		t.Errorf("expected recompute after invalidation, got %d", n)
	}
}

func TestManager_InvalidateMissingKeyIsNoop(t *testing.T) {
	m := NewManager(NewMemoryStore())
	m.Invalidate(context.Background(), "absent")
}

func TestManager_ComputeErrorPropagates(t *testing.T) {
	m := NewManager(NewMemoryStore())
	wantErr := errors.New("db down")
	_, err := m.GetOrComputeCount(context.Background(), "k", func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected compute error, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Set(ctx, "k", "v", -time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("expected expired entry to miss")
	}
}
