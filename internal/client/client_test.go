package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/app"
	"github.com/diillson/mock-api-server/internal/client"
	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/diillson/mock-api-server/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *client.Client {
	t.Helper()
	cfg := config.Defaults()
	cfg.Storage.Type = "memory"

	application, err := app.NewApp(context.Background(), cfg, testutils.TestLogger(t))
	require.NoError(t, err)

	router := testutils.SetupTestRouter(t)
	application.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = application.Close()
	})

	return client.New(client.Options{ServerURL: server.URL + "/"})
}

func TestClient(t *testing.T) {
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()
	c := startServer(t)

	var headers = map[string]interface{}{"X-Env": "ci"}
	created, err := c.CreateRoute(ctx, wire.RouteInput{
		Method:  testutils.Ptr("GET"),
		Path:    testutils.Ptr("/ping"),
		Status:  testutils.Ptr(200),
		Headers: &headers,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	t.Run("list and get", func(t *testing.T) {
		routes, err := c.ListRoutes(ctx)
		require.NoError(t, err)
		require.Len(t, routes, 1)

		got, err := c.GetRoute(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "/ping", got.Path)
		assert.Equal(t, "ci", got.Headers["X-Env"])
	})

	t.Run("call the dispatch endpoint", func(t *testing.T) {
		res, err := c.Call(ctx, "get", "ping", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "ci", res.Header.Get("X-Env"))
		assert.Empty(t, res.Body)
	})

	t.Run("update and resolve", func(t *testing.T) {
		updated, err := c.UpdateRoute(ctx, created.ID, wire.RouteInput{Status: testutils.Ptr(418)})
		require.NoError(t, err)
		assert.Equal(t, 418, updated.Status)

		resolved, err := c.ResolveRoute(ctx, "GET", "/ping")
		require.NoError(t, err)
		assert.Equal(t, created.ID, resolved.ID)
		assert.NoError(t, c.ClearCache(ctx))
	})

	t.Run("validation errors carry the rule", func(t *testing.T) {
		_, err := c.CreateRoute(ctx, wire.RouteInput{
			Method: testutils.Ptr("GET"),
			Path:   testutils.Ptr("no-slash"),
			Status: testutils.Ptr(200),
		})

		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "path", apiErr.Details["rule"])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.DeleteRoute(ctx, created.ID))

		_, err := c.GetRoute(ctx, created.ID)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})
}
