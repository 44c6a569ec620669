package app_test

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/app"
	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/diillson/mock-api-server/pkg/config"
	"github.com/diillson/mock-api-server/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedFile = "../../config/seed_routes.json"

func testConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.Storage.Type = "memory"
	cfg.Mock.SeedFile = seedFile
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) (*app.App, *gin.Engine) {
	t.Helper()
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, testutils.TestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	router := testutils.SetupTestRouter(t)
	application.RegisterRoutes(router)
	return application, router
}

func TestApp_SeedAndDispatch(t *testing.T) {
	application, router := startApp(t, testConfig(t))
	require.Equal(t, 3, application.Registry.Len())

	t.Run("seeded route is served", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/mock/users", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
		assert.Equal(t, "no-cache", resp.Header().Get("Cache-Control"))
		assert.Empty(t, resp.Header().Get("X-Frame-Options"), "dispatch responses carry only route headers")
	})

	t.Run("root dispatch is off by default", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/users", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusNotFound)
		assert.Contains(t, resp.Body.String(), "Rota não encontrada")
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/metrics", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
		assert.Contains(t, resp.Body.String(), "go_goroutines")
	})

	t.Run("health", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/health/readiness", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	})

	t.Run("admin api creates dispatchable routes", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/mock/routes",
			`{"method":"PUT","path":"/orders/1","status":202,"body":{"queued":true}}`, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusCreated)
		assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))

		resp = testutils.MakeRequest(t, router, http.MethodPut, "/mock/orders/1", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusAccepted)
		assert.JSONEq(t, `{"queued":true}`, resp.Body.String())
	})

	t.Run("dispatch base path is reserved", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/mock/routes",
			`{"method":"GET","path":"/mock/x","status":200}`, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
	})
}

func TestApp_RootDispatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.RootDispatch = true
	_, router := startApp(t, cfg)

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/login", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
	assert.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/unknown", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusNotFound)
	assert.Contains(t, resp.Body.String(), "No matching mock route")

	t.Run("health and metrics paths are reserved", func(t *testing.T) {
		for _, path := range []string{"/health", "/health/readiness", "/metrics"} {
			resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/mock/routes",
				`{"method":"GET","path":"`+path+`","status":200}`, nil)
			testutils.RequireHTTPStatus(t, resp, http.StatusBadRequest)
			assert.Contains(t, resp.Body.String(), "reserved prefix", path)
		}

		resp := testutils.MakeRequest(t, router, http.MethodGet, "/health/liveness", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	})
}

func TestApp_HealthPathsFreeWithoutRootDispatch(t *testing.T) {
	_, router := startApp(t, testConfig(t))

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/mock/routes",
		`{"method":"GET","path":"/health","status":200,"body":{"mocked":true}}`, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusCreated)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/mock/health", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.JSONEq(t, `{"mocked":true}`, resp.Body.String())
}

func TestApp_FileStorageSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "file"
	cfg.File.Path = filepath.Join(t.TempDir(), "routes.json")

	first, router := startApp(t, cfg)
	require.Equal(t, 3, first.Registry.Len())

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/api/mock/routes",
		`{"method":"GET","path":"/persisted","status":200,"body":null}`, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusCreated)
	require.NoError(t, first.Close())

	second, router := startApp(t, cfg)
	assert.Equal(t, 4, second.Registry.Len(), "seed is not applied again to a populated registry")

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/mock/persisted", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	assert.Equal(t, "null", resp.Body.String())
}

func TestApp_DatabaseStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "database"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "mockapi.db")
	cfg.Database.LogLevel = "silent"

	application, _ := startApp(t, cfg)
	require.NotNil(t, application.DB)
	assert.Equal(t, 3, application.Registry.Len())
}

func TestApp_AdminAuth(t *testing.T) {
	secret := strings.Repeat("a", security.MinSecretLength)
	t.Setenv("JWT_SECRET_KEY", "")

	cfg := testConfig(t)
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = secret
	_, router := startApp(t, cfg)

	km, err := security.NewKeyManager([]byte(secret), cfg.Auth.Issuer, cfg.Auth.Audience, nil)
	require.NoError(t, err)
	token, err := km.GenerateToken("ci", security.RoleAdmin, time.Hour)
	require.NoError(t, err)

	resp := testutils.MakeRequest(t, router, http.MethodGet, "/api/mock/routes", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)

	resp = testutils.MakeRequest(t, router, http.MethodGet, "/api/mock/routes", nil,
		map[string]string{"Authorization": "Bearer " + token})
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)

	// O despacho não exige token
	resp = testutils.MakeRequest(t, router, http.MethodGet, "/mock/users", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
}

func TestApp_InvalidStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Type = "tape"

	_, err := app.NewApp(context.Background(), cfg, testutils.TestLogger(t))
	assert.Error(t, err)
}
