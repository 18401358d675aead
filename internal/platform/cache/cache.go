// Package cache provides a small invalidation-aware cache manager for derived
// aggregates such as dashboard counts. Mutating services invalidate the keys
// that summarize the entities they touched; read paths recompute on miss.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Store is the key/value backend used by the Manager.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Manager wraps a Store with get-or-compute and invalidation semantics.
type Manager struct {
	store Store
	ttl   time.Duration
}

const defaultTTL = 5 * time.Minute

func NewManager(store Store) *Manager {
	return &Manager{store: store, ttl: defaultTTL}
}

// GetOrComputeCount returns the cached count for key, computing and storing it
// via fn on a miss. Backend read errors degrade to a recompute.
func (m *Manager) GetOrComputeCount(ctx context.Context, key string, fn func(ctx context.Context) (int, error)) (int, error) {
	if raw, ok, err := m.store.Get(ctx, key); err == nil && ok {
		if n, err := strconv.Atoi(raw); err == nil {
			return n, nil
		}
	}

	n, err := fn(ctx)
	if err != nil {
		return 0, err
	}

	_ = m.store.Set(ctx, key, strconv.Itoa(n), m.ttl)
	return n, nil
}

// Invalidate removes the given keys. Missing keys and backend errors are
// tolerated; a stale entry expires via TTL at worst.
func (m *Manager) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = m.store.Delete(ctx, keys...)
}
