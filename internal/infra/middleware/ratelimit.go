package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/diillson/mock-api-server/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware gerencia rate limiting
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	logger  *zap.Logger
	metrics *metrics.MockMetrics
}

// NewRateLimitMiddleware cria um novo middleware de rate limiting
func NewRateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, metrics *metrics.MockMetrics, logger *zap.Logger) *RateLimitMiddleware {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		logger:  logger,
		metrics: metrics,
	}
}

// IPRateLimit limita requisições por IP
func (m *RateLimitMiddleware) IPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		config := ratelimit.LimitConfig{
			Key:         "ip:" + clientIP,
			Limit:       m.limit,
			Period:      m.window,
			BurstFactor: 1.5, // permite até 50% mais em picos
		}

		result, err := m.limiter.Allow(c.Request.Context(), config)
		if err != nil {
			m.logger.Error("erro ao verificar rate limit", zap.Error(err))
			c.Next() // Em caso de erro, permite a requisição
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(result.ResetAfter).Unix(), 10))

		if !result.Allowed {
			path := c.FullPath()
			if path == "" {
				path = "unmatched"
			}
			m.metrics.RateLimitExceeded(path, c.Request.Method, "ip_limit")

			retryAfter := int(result.ResetAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "taxa de requisições excedida",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
