package middleware

import (
	"time"

	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/diillson/mock-api-server/pkg/ratelimit"
	"github.com/diillson/mock-api-server/pkg/security"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configura os middlewares opcionais
type Options struct {
	KeyManager     *security.KeyManager // nil desabilita a autenticação da API de gerenciamento
	Limiter        ratelimit.Limiter    // nil desabilita o rate limiting do despacho
	RateLimit      int
	RateWindow     time.Duration
	AllowedOrigins []string
	ServiceName    string
}

// Middleware contém todos os middlewares da aplicação
type Middleware struct {
	logger              *zap.Logger
	authMiddleware      *AuthMiddleware
	recoveryMiddleware  *RecoveryMiddleware
	securityMiddleware  *SecurityMiddleware
	tracingMiddleware   *TracingMiddleware
	metricsMiddleware   *MetricsMiddleware
	rateLimitMiddleware *RateLimitMiddleware
}

// NewMiddleware cria um novo conjunto de middlewares
func NewMiddleware(logger *zap.Logger, mockMetrics *metrics.MockMetrics, opts Options) *Middleware {
	m := &Middleware{
		logger:             logger,
		recoveryMiddleware: NewRecoveryMiddleware(logger),
		securityMiddleware: NewSecurityMiddleware(opts.AllowedOrigins, logger),
		tracingMiddleware:  NewTracingMiddleware(opts.ServiceName, logger),
	}

	if mockMetrics != nil {
		m.metricsMiddleware = NewMetricsMiddleware(mockMetrics, logger)
	}

	if opts.KeyManager != nil {
		m.authMiddleware = NewAuthMiddleware(opts.KeyManager, logger)
	} else {
		logger.Warn("Autenticação da API de gerenciamento desabilitada")
	}

	if opts.Limiter != nil {
		m.rateLimitMiddleware = NewRateLimitMiddleware(opts.Limiter, opts.RateLimit, opts.RateWindow, mockMetrics, logger)
	}

	return m
}

func noop(c *gin.Context) {
	c.Next()
}

// Metrics retorna o middleware de métricas
func (m *Middleware) Metrics() gin.HandlerFunc {
	if m.metricsMiddleware != nil {
		return m.metricsMiddleware.Middleware()
	}
	return noop
}

// AuthenticateAdmin exige um token de administrador quando a autenticação está habilitada
func (m *Middleware) AuthenticateAdmin() gin.HandlerFunc {
	if m.authMiddleware != nil {
		return m.authMiddleware.AuthenticateAdmin
	}
	return noop
}

// RateLimit limita as requisições de despacho por IP quando habilitado
func (m *Middleware) RateLimit() gin.HandlerFunc {
	if m.rateLimitMiddleware != nil {
		return m.rateLimitMiddleware.IPRateLimit()
	}
	return noop
}

// Recovery middleware para recuperação de pânicos
func (m *Middleware) Recovery() gin.HandlerFunc {
	return m.recoveryMiddleware.Recovery()
}

// Logger middleware para logging de requisições
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("path", path),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		m.logger.Info("request completed", fields...)
	}
}

// SecurityHeaders middleware para adicionar cabeçalhos de segurança
func (m *Middleware) SecurityHeaders() gin.HandlerFunc {
	return m.securityMiddleware.Headers()
}

// CORS middleware para configurar CORS
func (m *Middleware) CORS() gin.HandlerFunc {
	return m.securityMiddleware.CORS()
}

// Tracing retorna o middleware de tracing
func (m *Middleware) Tracing() gin.HandlerFunc {
	return m.tracingMiddleware.Middleware()
}
