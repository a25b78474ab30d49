// Package view tracks which rendered pages need a refresh after a mutation.
//
// A mutation bumps the version of every page path it affects. Renders remember
// the versions they were built against and rebuild once any of them moves.
// Nothing is pushed to clients; staleness is consumed on the next render.
package view

import (
	"context"
	"sync"

	"github.com/hustlehub/marketplace/internal/pkg/metrics"
)

// Registry records invalidation signals per page path.
type Registry interface {
	// Invalidate marks every path as needing a refresh.
	Invalidate(ctx context.Context, paths ...string) error
	// Version returns the current version of path. It only ever increases.
	Version(ctx context.Context, path string) (uint64, error)
}

// MemoryRegistry is a process-local Registry.
type MemoryRegistry struct {
	mu       sync.RWMutex
	versions map[string]uint64
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{versions: make(map[string]uint64)}
}

// Invalidate implements Registry.
func (m *MemoryRegistry) Invalidate(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range paths {
		m.versions[p]++
		metrics.ViewInvalidationsTotal.WithLabelValues(p).Inc()
	}
	return nil
}

// Version implements Registry.
func (m *MemoryRegistry) Version(_ context.Context, path string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[path], nil
}

// IsStale reports whether path was invalidated after a render built at version since.
func IsStale(ctx context.Context, r Registry, path string, since uint64) (bool, error) {
	v, err := r.Version(ctx, path)
	if err != nil {
		return false, err
	}
	return v != since, nil
}
