package view

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
	"github.com/hustlehub/marketplace/internal/pkg/metrics"
)

// Page identifies one rendering of a page.
type Page struct {
	// Path is the page path, e.g. /courses/42.
	Path string
	// Viewer is the session user id, empty for anonymous renders.
	Viewer string
	// DependsOn lists further paths whose invalidation also refreshes this page.
	DependsOn []string
}

func (p Page) paths() []string {
	return append([]string{p.Path}, p.DependsOn...)
}

type cacheKey struct {
	path   string
	viewer string
}

type entry struct {
	versions []uint64
	data     any
	builtAt  time.Time
}

// LoadFunc builds page data from the store.
type LoadFunc func(ctx context.Context) (any, error)

// Cache keeps rendered page data until the page is invalidated or MaxAge passes.
type Cache struct {
	registry   Registry
	maxAge     time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]entry
}

// CacheConfig configures a Cache.
type CacheConfig struct {
	// MaxAge bounds how long an entry is served without any invalidation.
	// Zero keeps entries until invalidated.
	MaxAge time.Duration
	// MaxEntries bounds memory use. Zero means 10000.
	MaxEntries int
}

// NewCache creates a page cache validated against registry.
func NewCache(registry Registry, cfg CacheConfig) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	return &Cache{
		registry:   registry,
		maxAge:     cfg.MaxAge,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
		entries:    make(map[cacheKey]entry),
	}
}

// Registry returns the registry the cache validates against.
func (c *Cache) Registry() Registry {
	return c.registry
}

// Render returns cached data for page while none of its paths were
// invalidated, and calls load otherwise. Load errors are never cached.
func (c *Cache) Render(ctx context.Context, page Page, load LoadFunc) (any, error) {
	versions, err := c.versions(ctx, page.paths())
	if err != nil {
		// Without versions nothing can be validated; serve fresh data.
		ctxlog.FromContext(ctx).Warn("view registry unavailable", "path", page.Path, "error", err)
		metrics.ViewRendersTotal.WithLabelValues("bypass").Inc()
		return load(ctx)
	}

	key := cacheKey{path: page.Path, viewer: page.Viewer}

	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()

	if ok && slices.Equal(cached.versions, versions) && !c.expired(cached) {
		metrics.ViewRendersTotal.WithLabelValues("hit").Inc()
		return cached.data, nil
	}

	if ok {
		metrics.ViewRendersTotal.WithLabelValues("stale").Inc()
	} else {
		metrics.ViewRendersTotal.WithLabelValues("miss").Inc()
	}

	data, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry{versions: versions, data: data, builtAt: c.now()}
	c.mu.Unlock()

	return data, nil
}

func (c *Cache) versions(ctx context.Context, paths []string) ([]uint64, error) {
	versions := make([]uint64, len(paths))
	for i, p := range paths {
		v, err := c.registry.Version(ctx, p)
		if err != nil {
			return nil, err
		}
		versions[i] = v
	}
	return versions, nil
}

func (c *Cache) expired(e entry) bool {
	return c.maxAge > 0 && c.now().Sub(e.builtAt) > c.maxAge
}

// evictLocked drops expired entries, or the oldest one if none expired.
func (c *Cache) evictLocked() {
	var oldestKey cacheKey
	var oldest time.Time
	removed := false

	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if oldest.IsZero() || e.builtAt.Before(oldest) {
			oldest = e.builtAt
			oldestKey = k
		}
	}

	if !removed && !oldest.IsZero() {
		delete(c.entries, oldestKey)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
