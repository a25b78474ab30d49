package view

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRegistry(t *testing.T) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRegistry(rdb), mr
}

func TestRegistries(t *testing.T) {
	redisRegistry, _ := newRedisRegistry(t)

	registries := map[string]Registry{
		"memory": NewMemoryRegistry(),
		"redis":  redisRegistry,
	}

	for name, reg := range registries {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			v, err := reg.Version(ctx, "/clipping")
			require.NoError(t, err)
			assert.Equal(t, uint64(0), v)

			require.NoError(t, reg.Invalidate(ctx, "/clipping", "/dashboard"))
			require.NoError(t, reg.Invalidate(ctx, "/clipping"))

			v, err = reg.Version(ctx, "/clipping")
			require.NoError(t, err)
			assert.Equal(t, uint64(2), v)

			v, err = reg.Version(ctx, "/dashboard")
			require.NoError(t, err)
			assert.Equal(t, uint64(1), v)

			v, err = reg.Version(ctx, "/thrift")
			require.NoError(t, err)
			assert.Equal(t, uint64(0), v)

			require.NoError(t, reg.Invalidate(ctx))
		})
	}
}

func TestRedisRegistry_KeyLayout(t *testing.T) {
	reg, mr := newRedisRegistry(t)

	require.NoError(t, reg.Invalidate(context.Background(), "/dashboard/clipping"))

	got, err := mr.Get("view:version:/dashboard/clipping")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRedisRegistry_Unavailable(t *testing.T) {
	reg, mr := newRedisRegistry(t)
	mr.Close()

	_, err := reg.Version(context.Background(), "/courses")
	assert.Error(t, err)
	assert.Error(t, reg.Invalidate(context.Background(), "/courses"))
}

func TestIsStale(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	since, err := reg.Version(ctx, "/clipping")
	require.NoError(t, err)

	stale, err := IsStale(ctx, reg, "/clipping", since)
	require.NoError(t, err)
	assert.False(t, stale)

	require.NoError(t, reg.Invalidate(ctx, "/clipping"))

	stale, err = IsStale(ctx, reg, "/clipping", since)
	require.NoError(t, err)
	assert.True(t, stale)
}
