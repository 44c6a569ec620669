package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/diillson/mock-api-server/internal/adapter/seed"
	"github.com/diillson/mock-api-server/internal/app/route"
	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONRouteLoader(t *testing.T) {
	ctx := context.Background()
	logger := testutils.TestLogger(t)

	t.Run("creates valid routes and skips invalid ones", func(t *testing.T) {
		registry := route.NewRegistry()
		loader := seed.NewJSONRouteLoader(registry, logger)

		path := writeSeed(t, `{"routes": [
			{"method": "GET", "path": "/users", "status": 200, "body": [{"id": 1}]},
			{"method": "GET", "path": "/api/reserved", "status": 200},
			{"method": "POST", "path": "/login", "status": 401, "delay_ms": 300, "body": null},
			{"method": "GET", "path": "/bad-header", "status": 200, "headers": {"X-N": 1}}
		]}`)

		created, err := loader.LoadRoutesFromJSON(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 2, created)

		routes := registry.List(ctx)
		require.Len(t, routes, 2)
		assert.Equal(t, "/users", routes[0].Path)
		assert.True(t, routes[1].Body.IsNull())
		assert.Equal(t, 300, routes[1].DelayMs)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		loader := seed.NewJSONRouteLoader(route.NewRegistry(), logger)

		created, err := loader.LoadRoutesFromJSON(ctx, filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)
		assert.Zero(t, created)
	})

	t.Run("malformed file", func(t *testing.T) {
		loader := seed.NewJSONRouteLoader(route.NewRegistry(), logger)

		_, err := loader.LoadRoutesFromJSON(ctx, writeSeed(t, `[{"path":`))
		assert.Error(t, err)
	})

	t.Run("bundled sample seeds cleanly", func(t *testing.T) {
		registry := route.NewRegistry()
		loader := seed.NewJSONRouteLoader(registry, logger)

		created, err := loader.LoadRoutesFromJSON(ctx, filepath.Join("..", "..", "..", "config", "seed_routes.json"))
		require.NoError(t, err)
		assert.Equal(t, registry.Len(), created)
		assert.Positive(t, created)
	})
}
