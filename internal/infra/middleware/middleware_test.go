package middleware_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/infra/middleware"
	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/diillson/mock-api-server/pkg/ratelimit"
	"github.com/diillson/mock-api-server/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func newKeyManager(t *testing.T) *security.KeyManager {
	km, err := security.NewKeyManager([]byte(strings.Repeat("k", security.MinSecretLength)), "mock-api-server", "mock-api-admin", testutils.TestLogger(t))
	require.NoError(t, err)
	return km
}

func bearer(t *testing.T, km *security.KeyManager, role string, ttl time.Duration) map[string]string {
	token, err := km.GenerateToken("tester", role, ttl)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthenticateAdmin(t *testing.T) {
	km := newKeyManager(t)
	mw := middleware.NewMiddleware(testutils.TestLogger(t), nil, middleware.Options{KeyManager: km})

	router := testutils.SetupTestRouter(t)
	router.GET("/admin", mw.AuthenticateAdmin(), ok)

	t.Run("admin token", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/admin", nil, bearer(t, km, security.RoleAdmin, time.Hour))
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/admin", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/admin", nil, map[string]string{"Authorization": "Basic abc"})
		testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/admin", nil, bearer(t, km, security.RoleAdmin, -time.Minute))
		testutils.RequireHTTPStatus(t, resp, http.StatusUnauthorized)
		assert.Contains(t, resp.Body.String(), "Token expirado")
	})

	t.Run("non admin role never reaches the handler", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/admin", nil, bearer(t, km, "viewer", time.Hour))
		testutils.RequireHTTPStatus(t, resp, http.StatusForbidden)
		assert.NotContains(t, resp.Body.String(), `"ok"`)
	})

	t.Run("disabled auth lets everything through", func(t *testing.T) {
		open := middleware.NewMiddleware(testutils.TestLogger(t), nil, middleware.Options{})
		r := testutils.SetupTestRouter(t)
		r.GET("/admin", open.AuthenticateAdmin(), ok)

		resp := testutils.MakeRequest(t, r, http.MethodGet, "/admin", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	mw := middleware.NewMiddleware(testutils.TestLogger(t), nil, middleware.Options{
		Limiter:    ratelimit.NewMemoryLimiter(),
		RateLimit:  2,
		RateWindow: time.Hour,
	})

	router := testutils.SetupTestRouter(t)
	router.GET("/mock/x", mw.RateLimit(), ok)

	// Limite 2 com fator de rajada 1.5 permite 3 requisições
	for i := 0; i < 3; i++ {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/mock/x", nil, nil)
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
		assert.Equal(t, "2", resp.Header().Get("X-RateLimit-Limit"))
	}

	resp := testutils.MakeRequest(t, router, http.MethodGet, "/mock/x", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusTooManyRequests)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))
	assert.Equal(t, "0", resp.Header().Get("X-RateLimit-Remaining"))
}

func TestSecurityMiddleware(t *testing.T) {
	mw := middleware.NewMiddleware(testutils.TestLogger(t), nil, middleware.Options{
		AllowedOrigins: []string{"https://ui.example.com"},
	})

	router := testutils.SetupTestRouter(t)
	router.Use(mw.CORS(), mw.SecurityHeaders())
	router.GET("/api/mock/routes", ok)
	router.OPTIONS("/api/mock/routes", ok)

	t.Run("allowed origin is echoed", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/api/mock/routes", nil, map[string]string{"Origin": "https://ui.example.com"})
		testutils.RequireHTTPStatus(t, resp, http.StatusOK)
		assert.Equal(t, "https://ui.example.com", resp.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "DENY", resp.Header().Get("X-Frame-Options"))
		assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodGet, "/api/mock/routes", nil, map[string]string{"Origin": "https://evil.example.com"})
		assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		resp := testutils.MakeRequest(t, router, http.MethodOptions, "/api/mock/routes", nil, map[string]string{"Origin": "https://ui.example.com"})
		testutils.RequireHTTPStatus(t, resp, http.StatusNoContent)
		assert.Contains(t, resp.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	})
}

func TestRecovery(t *testing.T) {
	mw := middleware.NewMiddleware(testutils.TestLogger(t), nil, middleware.Options{})

	router := testutils.SetupTestRouter(t)
	router.Use(mw.Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	resp := testutils.MakeRequest(t, router, http.MethodGet, "/panic", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusInternalServerError)
	testutils.RequireJSONContentType(t, resp)
}
