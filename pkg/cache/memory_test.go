package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/diillson/mock-api-server/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute, time.Minute, nil, testutils.TestLogger(t))

	t.Run("string values", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, cache.KeyPrefix+"a", "route-1", time.Minute))

		var id string
		found, err := c.Get(ctx, cache.KeyPrefix+"a", &id)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "route-1", id)
	})

	t.Run("structured values", func(t *testing.T) {
		type entry struct {
			ID     string `json:"id"`
			Status int    `json:"status"`
		}
		require.NoError(t, c.Set(ctx, cache.KeyPrefix+"b", entry{ID: "r", Status: 201}, time.Minute))

		var got entry
		found, err := c.Get(ctx, cache.KeyPrefix+"b", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, entry{ID: "r", Status: 201}, got)
	})

	t.Run("miss", func(t *testing.T) {
		var id string
		found, err := c.Get(ctx, "absent", &id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clear only removes server keys", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "foreign", "keep", time.Minute))
		require.NoError(t, c.Clear(ctx))

		var value string
		found, _ := c.Get(ctx, cache.KeyPrefix+"a", &value)
		assert.False(t, found)
		found, _ = c.Get(ctx, "foreign", &value)
		assert.True(t, found)
	})

	t.Run("delete and ping", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, cache.KeyPrefix+"c", "x", time.Minute))
		require.NoError(t, c.Delete(ctx, cache.KeyPrefix+"c"))
		assert.NoError(t, c.Ping(ctx))
	})
}

func TestNoOpCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewNoOpCache()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	var value string
	found, err := c.Get(ctx, "k", &value)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Clear(ctx))
}

func TestMemoryCache_StoresCopies(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(time.Minute, time.Minute, nil, testutils.TestLogger(t))

	headers := map[string]string{"X-Mode": "before"}
	require.NoError(t, c.Set(ctx, cache.KeyPrefix+"h", headers, time.Minute))
	headers["X-Mode"] = "after"

	var got map[string]string
	found, err := c.Get(ctx, cache.KeyPrefix+"h", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "before", got["X-Mode"])

	var wrong int
	_, err = c.Get(ctx, cache.KeyPrefix+"h", &wrong)
	assert.Error(t, err)
}
