package http

import (
	"net/http"

	"github.com/diillson/mock-api-server/internal/app/dispatch"
	"github.com/diillson/mock-api-server/internal/app/route"
	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler agrupa os handlers HTTP do servidor de mocks
type Handler struct {
	routeHandler  *RouteHandler
	mockHandler   *MockHandler
	healthChecker *HealthChecker
}

// NewHandler cria os handlers de gerenciamento, despacho e health check.
// storage pode ser nil quando as rotas vivem apenas em memória.
func NewHandler(registry *route.Registry, dispatcher *dispatch.Dispatcher, storage Pinger, cache Pinger, logger *zap.Logger, m *metrics.MockMetrics) *Handler {
	return &Handler{
		routeHandler:  NewRouteHandler(registry, dispatcher, logger, m),
		mockHandler:   NewMockHandler(dispatcher, logger),
		healthChecker: NewHealthChecker(registry, storage, cache, logger),
	}
}

// RegisterAdminRoutes registra a API de gerenciamento no grupo informado
func (h *Handler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.GET("/routes", h.routeHandler.ListRoutes)
	group.POST("/routes", h.routeHandler.CreateRoute)
	group.GET("/routes/:id", h.routeHandler.GetRoute)
	group.PUT("/routes/:id", h.routeHandler.UpdateRoute)
	group.PATCH("/routes/:id", h.routeHandler.UpdateRoute)
	group.DELETE("/routes/:id", h.routeHandler.DeleteRoute)
	group.GET("/resolve", h.routeHandler.ResolveRoute)
	group.DELETE("/cache", h.routeHandler.ClearCache)

	// Preflight CORS; o middleware responde antes do handler
	for _, path := range []string{"/routes", "/routes/:id", "/resolve", "/cache"} {
		group.OPTIONS(path, preflight)
	}
}

func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RegisterHealthRoutes registra os endpoints de health check
func (h *Handler) RegisterHealthRoutes(router gin.IRoutes) {
	router.GET("/health", h.healthChecker.LivenessCheck)
	router.GET("/health/liveness", h.healthChecker.LivenessCheck)
	router.GET("/health/readiness", h.healthChecker.ReadinessCheck)
	router.GET("/health/details", h.healthChecker.DetailedHealth)
}

// ServeMock despacha requisições recebidas sob o prefixo de despacho
func (h *Handler) ServeMock(c *gin.Context) {
	h.mockHandler.Serve(c)
}

// ServeRoot despacha requisições que nenhum outro handler atendeu
func (h *Handler) ServeRoot(c *gin.Context) {
	h.mockHandler.ServeRoot(c)
}
