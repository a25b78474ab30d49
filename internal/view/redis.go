package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/hustlehub/marketplace/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "view:version:"

// RedisRegistry shares invalidation signals between replicas through Redis counters.
type RedisRegistry struct {
	rdb *redis.Client
}

// NewRedisRegistry creates a registry backed by rdb.
func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

// Invalidate implements Registry. All counters are bumped in one round trip.
func (r *RedisRegistry) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	pipe := r.rdb.TxPipeline()
	for _, p := range paths {
		pipe.Incr(ctx, redisKeyPrefix+p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate views: %w", err)
	}

	for _, p := range paths {
		metrics.ViewInvalidationsTotal.WithLabelValues(p).Inc()
	}
	return nil
}

// Version implements Registry. A path that was never invalidated is at version 0.
func (r *RedisRegistry) Version(ctx context.Context, path string) (uint64, error) {
	v, err := r.rdb.Get(ctx, redisKeyPrefix+path).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get view version: %w", err)
	}
	return v, nil
}
