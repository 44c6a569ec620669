package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/adapter/filestore"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoute(id, path string) *model.MockRoute {
	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.MockRoute{
		ID:        id,
		Method:    "GET",
		Path:      path,
		Status:    200,
		Headers:   map[string]string{"X-Id": id},
		Body:      model.MustBody(map[string]string{"id": id}),
		Enabled:   true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}

func TestRouteStore(t *testing.T) {
	ctx := context.Background()
	logger := testutils.TestLogger(t)

	t.Run("missing file is initialized empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "routes.json")
		store := filestore.NewRouteStore(path, logger)

		routes, err := store.LoadRoutes(ctx)
		require.NoError(t, err)
		assert.Empty(t, routes)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"routes": []`)
		require.NoError(t, store.Ping(ctx))
	})

	t.Run("routes survive a reopen in insertion order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.json")
		store := filestore.NewRouteStore(path, logger)

		require.NoError(t, store.SaveRoute(ctx, sampleRoute("a", "/a")))
		require.NoError(t, store.SaveRoute(ctx, sampleRoute("b", "/b")))

		nullBody := sampleRoute("c", "/c")
		nullBody.Body = model.NullBody()
		require.NoError(t, store.SaveRoute(ctx, nullBody))

		noBody := sampleRoute("d", "/d")
		noBody.Body = model.NoBody()
		require.NoError(t, store.SaveRoute(ctx, noBody))

		reopened := filestore.NewRouteStore(path, logger)
		routes, err := reopened.LoadRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 4)

		assert.Equal(t, sampleRoute("a", "/a"), routes[0])
		assert.Equal(t, "b", routes[1].ID)
		assert.True(t, routes[2].Body.IsNull())
		assert.True(t, routes[3].Body.IsAbsent())
	})

	t.Run("save replaces in place", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.json")
		store := filestore.NewRouteStore(path, logger)

		require.NoError(t, store.SaveRoute(ctx, sampleRoute("a", "/a")))
		require.NoError(t, store.SaveRoute(ctx, sampleRoute("b", "/b")))

		updated := sampleRoute("a", "/a")
		updated.Status = 503
		require.NoError(t, store.SaveRoute(ctx, updated))

		routes, err := filestore.NewRouteStore(path, logger).LoadRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 2)
		assert.Equal(t, "a", routes[0].ID)
		assert.Equal(t, 503, routes[0].Status)
	})

	t.Run("delete", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.json")
		store := filestore.NewRouteStore(path, logger)

		require.NoError(t, store.SaveRoute(ctx, sampleRoute("a", "/a")))
		require.NoError(t, store.DeleteRoute(ctx, "a"))
		assert.ErrorIs(t, store.DeleteRoute(ctx, "a"), repository.ErrRouteNotFound)

		routes, err := filestore.NewRouteStore(path, logger).LoadRoutes(ctx)
		require.NoError(t, err)
		assert.Empty(t, routes)

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temporary file must not remain")
	})

	t.Run("corrupt file is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := filestore.NewRouteStore(path, logger).LoadRoutes(ctx)
		assert.Error(t, err)
	})

	t.Run("default path", func(t *testing.T) {
		assert.Equal(t, filestore.DefaultPath, filestore.NewRouteStore("", nil).Path())
	})
}
