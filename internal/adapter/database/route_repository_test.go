package database_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/adapter/database"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func setupRepository(t *testing.T) (*database.RouteRepository, *database.Database) {
	t.Helper()
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	log := testutils.TestLogger(t)
	db, err := database.NewDatabase(ctx, database.Config{
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "mockapi.db"),
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Minute,
		LogLevel:        logger.Silent,
		SlowThreshold:   time.Second,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return database.NewRouteRepository(db.DB(), log), db
}

func storedRoute(id, path string) *model.MockRoute {
	stamp := time.Date(2025, 6, 1, 12, 0, 0, 123000, time.UTC)
	return &model.MockRoute{
		ID:        id,
		Method:    "GET",
		Path:      path,
		Status:    200,
		Headers:   map[string]string{"Content-Type": "application/json"},
		Body:      model.MustBody(map[string]string{"path": path}),
		Enabled:   true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}

func TestRouteRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves every field", func(t *testing.T) {
		repo, db := setupRepository(t)
		require.NoError(t, db.Ping(ctx))

		original := storedRoute("a", "/a")
		original.DelayMs = 250
		require.NoError(t, repo.SaveRoute(ctx, original))

		routes, err := repo.LoadRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, original, routes[0])
	})

	t.Run("body variants are distinguished", func(t *testing.T) {
		repo, _ := setupRepository(t)

		nullBody := storedRoute("null", "/null")
		nullBody.Body = model.NullBody()
		noBody := storedRoute("none", "/none")
		noBody.Body = model.NoBody()

		require.NoError(t, repo.SaveRoute(ctx, nullBody))
		require.NoError(t, repo.SaveRoute(ctx, noBody))

		routes, err := repo.LoadRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 2)
		assert.True(t, routes[0].Body.IsNull())
		assert.True(t, routes[1].Body.IsAbsent())
	})

	t.Run("upsert keeps the insertion position", func(t *testing.T) {
		repo, _ := setupRepository(t)

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, repo.SaveRoute(ctx, storedRoute(id, "/"+id)))
		}

		updated := storedRoute("a", "/a")
		updated.Status = 418
		updated.Enabled = false
		require.NoError(t, repo.SaveRoute(ctx, updated))

		routes, err := repo.LoadRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 3)
		assert.Equal(t, "a", routes[0].ID)
		assert.Equal(t, 418, routes[0].Status)
		assert.False(t, routes[0].Enabled)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("body at the size limit round trips", func(t *testing.T) {
		repo, _ := setupRepository(t)

		// As aspas do JSON completam o limite
		route := storedRoute("big", "/big")
		route.Body = model.MustBody(strings.Repeat("a", model.MaxBodyBytes-2))
		require.Equal(t, model.MaxBodyBytes, route.Body.Size())
		require.NoError(t, model.NewValidator().Validate(route))

		require.NoError(t, repo.SaveRoute(ctx, route))

		routes, err := repo.LoadRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, model.MaxBodyBytes, routes[0].Body.Size())
		assert.True(t, route.Body.Equal(routes[0].Body))
	})

	t.Run("delete", func(t *testing.T) {
		repo, _ := setupRepository(t)
		require.NoError(t, repo.SaveRoute(ctx, storedRoute("a", "/a")))

		require.NoError(t, repo.DeleteRoute(ctx, "a"))
		assert.ErrorIs(t, repo.DeleteRoute(ctx, "a"), repository.ErrRouteNotFound)

		routes, err := repo.LoadRoutes(ctx)
		require.NoError(t, err)
		assert.Empty(t, routes)
	})
}
