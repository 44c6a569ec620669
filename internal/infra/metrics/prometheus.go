package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados de um despacho
const (
	OutcomeMatched   = "matched"
	OutcomeMiss      = "miss"
	OutcomeCancelled = "cancelled"
)

// MockMetrics gerencia métricas do servidor de mocks.
// Um *MockMetrics nil é válido e descarta todas as observações.
type MockMetrics struct {
	requestCounter     *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	responseSize       *prometheus.SummaryVec
	activeRequests     *prometheus.GaugeVec
	errorsTotal        *prometheus.CounterVec
	circuitBreakerOpen *prometheus.GaugeVec
	rateLimited        *prometheus.CounterVec
	dispatchTotal      *prometheus.CounterVec
	dispatchDelay      *prometheus.HistogramVec
	mutationsTotal     *prometheus.CounterVec
	routesRegistered   prometheus.Gauge
	cacheLookups       *prometheus.CounterVec
}

// NewMockMetrics cria e registra as métricas no registerer informado
func NewMockMetrics(reg prometheus.Registerer) *MockMetrics {
	factory := promauto.With(reg)

	return &MockMetrics{
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_requests_total",
				Help: "Total number of HTTP requests by path, method, and status code",
			},
			[]string{"path", "method", "status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mockapi_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		responseSize: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "mockapi_response_size_bytes",
				Help:       "HTTP response size in bytes",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"path", "method"},
		),

		activeRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mockapi_active_requests",
				Help: "Number of in-flight requests being processed",
			},
			[]string{"path", "method"},
		),

		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"path", "method", "error_type"},
		),

		circuitBreakerOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mockapi_circuit_breaker_open",
				Help: "Indicates if a circuit breaker is open (1) or closed (0)",
			},
			[]string{"service"},
		),

		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_rate_limited_requests_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"path", "method", "limit_type"},
		),

		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_dispatch_total",
				Help: "Total number of dispatched mock requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),

		dispatchDelay: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mockapi_dispatch_delay_seconds",
				Help:    "Artificial delay applied to matched mock requests",
				Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),

		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_route_mutations_total",
				Help: "Total number of registry mutations by operation and result",
			},
			[]string{"operation", "result"},
		),

		routesRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mockapi_routes_registered",
				Help: "Number of mock routes currently in the registry",
			},
		),

		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockapi_dispatch_cache_lookups_total",
				Help: "Dispatch memo cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
	}
}

// RequestStarted registra o início de uma requisição
func (m *MockMetrics) RequestStarted(path, method string) {
	if m == nil {
		return
	}
	m.activeRequests.WithLabelValues(path, method).Inc()
}

// RequestCompleted registra a conclusão de uma requisição
func (m *MockMetrics) RequestCompleted(path, method, status string, duration time.Duration, responseSize int) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(path, method, status).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
	m.responseSize.WithLabelValues(path, method).Observe(float64(responseSize))
	m.activeRequests.WithLabelValues(path, method).Dec()
}

// RequestError registra um erro de requisição
func (m *MockMetrics) RequestError(path, method, errorType string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, errorType).Inc()
}

// CircuitBreakerStateChanged registra mudança no estado de um circuit breaker
func (m *MockMetrics) CircuitBreakerStateChanged(service string, isOpen bool) {
	if m == nil {
		return
	}
	value := 0.0
	if isOpen {
		value = 1.0
	}
	m.circuitBreakerOpen.WithLabelValues(service).Set(value)
}

// RateLimitExceeded registra quando um limite de taxa é excedido
func (m *MockMetrics) RateLimitExceeded(path, method, limitType string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(path, method, limitType).Inc()
}

// DispatchObserved registra o resultado de um despacho
func (m *MockMetrics) DispatchObserved(method, outcome string, delay time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(method, outcome).Inc()
	if outcome == OutcomeMatched {
		m.dispatchDelay.WithLabelValues(method).Observe(delay.Seconds())
	}
}

// MutationObserved registra uma operação de escrita no registro
func (m *MockMetrics) MutationObserved(operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.mutationsTotal.WithLabelValues(operation, result).Inc()
}

// SetRoutesRegistered atualiza o total de rotas no registro
func (m *MockMetrics) SetRoutesRegistered(count int) {
	if m == nil {
		return
	}
	m.routesRegistered.Set(float64(count))
}

// CacheLookup registra um acerto ou erro no cache de despacho
func (m *MockMetrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
