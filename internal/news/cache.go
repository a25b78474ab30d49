package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "news:headlines:"

// Entry is a cached provider payload.
type Entry struct {
	Body      json.RawMessage `json:"body"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Cache stores provider payloads per category.
type Cache interface {
	Get(ctx context.Context, category Category) (*Entry, error)
	Set(ctx context.Context, category Category, entry Entry, ttl time.Duration) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Category]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[Category]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache. A missing or expired entry returns nil.
func (c *MemoryCache) Get(_ context.Context, category Category) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[category]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	entry := e.entry
	return &entry, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, category Category, entry Entry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[category] = memoryEntry{entry: entry, expiresAt: c.now().Add(ttl)}
	return nil
}

// RedisCache shares provider payloads between replicas.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache creates a cache backed by rdb.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, category Category) (*Entry, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+string(category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get headlines: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode headlines entry: %w", err)
	}
	return &entry, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, category Category, entry Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode headlines entry: %w", err)
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+string(category), data, ttl).Err(); err != nil {
		return fmt.Errorf("set headlines: %w", err)
	}
	return nil
}
