package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/app/dispatch"
	"github.com/diillson/mock-api-server/internal/domain/model"
	apperrors "github.com/diillson/mock-api-server/pkg/errors"
	"github.com/diillson/mock-api-server/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// Cabeçalhos cujo valor nunca aparece nos logs
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"proxy-authorization": true,
}

// MockHandler transforma requisições HTTP em respostas simuladas
type MockHandler struct {
	dispatcher *dispatch.Dispatcher
	logger     *logging.ContextLogger
}

// NewMockHandler cria um novo handler de despacho
func NewMockHandler(dispatcher *dispatch.Dispatcher, logger *zap.Logger) *MockHandler {
	return &MockHandler{
		dispatcher: dispatcher,
		logger:     logging.NewContextLogger(logger.With(zap.String("component", "dispatch"))),
	}
}

// Serve atende rotas registradas sob o prefixo de despacho (/mock/*path)
func (h *MockHandler) Serve(c *gin.Context) {
	h.dispatch(c, c.Param("path"))
}

// ServeRoot atende qualquer caminho não servido por outro handler
func (h *MockHandler) ServeRoot(c *gin.Context) {
	h.dispatch(c, c.Request.URL.Path)
}

func (h *MockHandler) dispatch(c *gin.Context, rawPath string) {
	ctx := c.Request.Context()
	method := model.NormalizeMethod(c.Request.Method)
	path := normalizePath(rawPath)

	resp, err := h.dispatcher.Dispatch(ctx, method, path)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRouteMatched):
			h.logger.InfoCtx(ctx, "Nenhuma rota mock atende à requisição",
				zap.String("method", method),
				zap.String("path", path))
			c.JSON(http.StatusNotFound, wire.MissResponse{Error: wire.MissMessage, Method: method, Path: path})
		case errors.Is(err, context.Canceled):
			// Cliente desistiu durante o atraso: nenhuma resposta é emitida
			h.logger.DebugCtx(ctx, "Requisição cancelada antes da resposta simulada",
				zap.String("method", method),
				zap.String("path", path))
			c.Abort()
		default:
			apiErr := apperrors.FromError(err)
			h.logger.ErrorCtx(ctx, "Falha ao despachar rota mock",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err))
			c.JSON(apiErr.Code, apiErr)
		}
		return
	}

	writeMockResponse(c, resp)

	h.logger.InfoCtx(ctx, "Rota mock despachada",
		zap.String("route_id", resp.RouteID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.Status),
		zap.Duration("delay", resp.Delay),
		zap.Any("headers", redactHeaders(resp.Headers)))
}

// normalizePath remove a query string; caminho vazio vira "/"
func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	return path
}

func writeMockResponse(c *gin.Context, resp *dispatch.Response) {
	header := c.Writer.Header()
	for name, value := range resp.Headers {
		header.Set(name, value)
	}
	if header.Get(requestIDHeader) == "" {
		header.Set(requestIDHeader, uuid.NewString()[:12])
	}

	payload := resp.Body.Bytes()
	if payload != nil && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	c.Status(resp.Status)
	c.Writer.WriteHeaderNow()
	if payload != nil {
		_, _ = c.Writer.Write(payload)
	}
}

func redactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if sensitiveHeaders[strings.ToLower(name)] {
			value = "REDACTED"
		}
		out[name] = value
	}
	return out
}
