package http

import (
	"net/http"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/app/dispatch"
	"github.com/diillson/mock-api-server/internal/app/route"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/infra/metrics"
	apperrors "github.com/diillson/mock-api-server/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteHandler implementa os handlers para gerenciamento de rotas mock
type RouteHandler struct {
	registry   *route.Registry
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
	metrics    *metrics.MockMetrics
}

// NewRouteHandler cria um novo handler de rotas
func NewRouteHandler(registry *route.Registry, dispatcher *dispatch.Dispatcher, logger *zap.Logger, m *metrics.MockMetrics) *RouteHandler {
	return &RouteHandler{
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    m,
	}
}

// ListRoutes lista todas as rotas em ordem de inserção
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	routes := h.registry.List(c.Request.Context())
	c.JSON(http.StatusOK, wire.RouteList{Routes: wire.FromModels(routes)})
}

// CreateRoute registra uma nova rota mock
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var input wire.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, "create_route_error", apperrors.BadRequest("Invalid JSON payload", err))
		return
	}

	draft, err := input.ToDraft()
	if err != nil {
		h.respondError(c, "create_route_error", err)
		return
	}

	created, err := h.registry.Create(c.Request.Context(), draft)
	if err != nil {
		h.respondError(c, "create_route_error", err)
		return
	}

	c.JSON(http.StatusCreated, wire.RouteEnvelope{Route: wire.FromModel(created)})
}

// GetRoute retorna uma rota pelo id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	found, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get_route_error", err)
		return
	}

	c.JSON(http.StatusOK, wire.RouteEnvelope{Route: wire.FromModel(found)})
}

// UpdateRoute aplica uma atualização parcial; PUT e PATCH têm a mesma semântica
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	var input wire.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondError(c, "update_route_error", apperrors.BadRequest("Invalid JSON payload", err))
		return
	}

	patch, err := input.ToPatch()
	if err != nil {
		h.respondError(c, "update_route_error", err)
		return
	}

	updated, err := h.registry.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, "update_route_error", err)
		return
	}

	c.JSON(http.StatusOK, wire.RouteEnvelope{Route: wire.FromModel(updated)})
}

// DeleteRoute remove uma rota
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "delete_route_error", err)
		return
	}

	c.JSON(http.StatusOK, wire.DeleteResult{Deleted: true})
}

// ResolveRoute mostra qual rota atenderia a um par método/caminho, sem aplicar o atraso
func (h *RouteHandler) ResolveRoute(c *gin.Context) {
	method := model.NormalizeMethod(c.DefaultQuery("method", http.MethodGet))
	path := c.Query("path")
	if path == "" {
		h.respondError(c, "resolve_route_error", apperrors.BadRequest("Query parameter 'path' is required", nil))
		return
	}

	matched, err := h.dispatcher.Resolve(c.Request.Context(), method, path)
	if err != nil {
		h.logger.Debug("Nenhuma rota atende ao diagnóstico",
			zap.String("method", method),
			zap.String("path", path))
		c.JSON(http.StatusNotFound, wire.MissResponse{Error: wire.MissMessage, Method: method, Path: path})
		return
	}

	c.JSON(http.StatusOK, wire.RouteEnvelope{Route: wire.FromModel(matched)})
}

// ClearCache descarta o cache de despacho
func (h *RouteHandler) ClearCache(c *gin.Context) {
	if err := h.dispatcher.ClearCache(c.Request.Context()); err != nil {
		h.respondError(c, "clear_cache_error", apperrors.InternalServer("Falha ao limpar cache", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cache limpo com sucesso"})
}

func (h *RouteHandler) respondError(c *gin.Context, errorType string, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		h.logger.Error("Falha na API de gerenciamento",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		h.metrics.RequestError(c.FullPath(), c.Request.Method, errorType)
	}
	c.JSON(apiErr.Code, apiErr)
}
