package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"go.uber.org/zap"
)

// ErrCircuitOpen é retornado enquanto o circuito está aberto
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState representa os estados possíveis do circuit breaker
type CircuitState int

const (
	StateClose CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreakerConfig contém a configuração do circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxFailures int           // Falhas consecutivas que abrem o circuito
	Timeout     time.Duration // Tempo aberto antes de liberar uma sondagem
	MaxProbes   int           // Chamadas simultâneas permitidas no estado half-open
}

// CircuitBreaker protege o armazenamento de rotas contra falhas repetidas.
// Cancelamento pelo chamador não conta como falha.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probes   int

	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.MockMetrics
}

// NewCircuitBreaker cria um novo circuit breaker
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *zap.Logger, m *metrics.MockMetrics) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With(zap.String("breaker", cfg.Name)),
		metrics: m,
	}
}

// Execute chama fn se o circuito permitir e contabiliza o resultado
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	probe, ok := cb.acquire()
	if !ok {
		return ErrCircuitOpen
	}

	err := fn(ctx)
	cb.release(probe, err == nil || errors.Is(err, context.Canceled))
	return err
}

// acquire decide se a chamada pode seguir; probe indica uma sondagem half-open
func (cb *CircuitBreaker) acquire() (probe bool, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return false, false
		}
		cb.transition(StateHalfOpen)
	}
	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.MaxProbes {
			return false, false
		}
		cb.probes++
		return true, true
	}
	return false, true
}

func (cb *CircuitBreaker) release(probe, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probes--
		// O circuito pode ter sido reiniciado durante a sondagem
		if cb.state != StateHalfOpen {
			return
		}
		if success {
			cb.transition(StateClose)
		} else {
			cb.transition(StateOpen)
		}
		return
	}

	if cb.state != StateClose {
		return
	}
	if success {
		cb.failures = 0
		return
	}
	cb.failures++
	cb.logger.Debug("Falha registrada no circuit breaker",
		zap.Int("failures", cb.failures),
		zap.Int("max_failures", cb.cfg.MaxFailures))
	if cb.failures >= cb.cfg.MaxFailures {
		cb.transition(StateOpen)
	}
}

// transition deve ser chamado com o lock
func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to

	switch to {
	case StateOpen:
		cb.openedAt = cb.now()
		cb.metrics.CircuitBreakerStateChanged(cb.cfg.Name, true)
		cb.logger.Warn("Circuit breaker aberto",
			zap.Stringer("from", from),
			zap.Time("retry_at", cb.openedAt.Add(cb.cfg.Timeout)))
	case StateHalfOpen:
		cb.probes = 0
		cb.logger.Info("Circuit breaker liberando sondagem")
	case StateClose:
		cb.failures = 0
		if from != StateClose {
			cb.metrics.CircuitBreakerStateChanged(cb.cfg.Name, false)
			cb.logger.Info("Circuit breaker fechado", zap.Stringer("from", from))
		}
	}
}

// GetState retorna o estado atual do circuit breaker
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset fecha o circuito e zera as falhas
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClose)
}
