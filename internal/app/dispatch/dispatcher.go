package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/diillson/mock-api-server/internal/app/route"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/diillson/mock-api-server/pkg/cache"
	"go.uber.org/zap"
)

// DefaultCacheTTL é a validade das entradas do cache de despacho
const DefaultCacheTTL = 5 * time.Minute

// Response é a resposta simulada de uma rota mock
type Response struct {
	RouteID string
	Status  int
	Headers map[string]string
	Body    model.Body
	Delay   time.Duration
}

// Dispatcher resolve requisições contra o registro e produz respostas simuladas
type Dispatcher struct {
	registry *route.Registry
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	metrics  *metrics.MockMetrics
}

// NewDispatcher cria um despachante; um cache nil desabilita a memorização
func NewDispatcher(registry *route.Registry, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger, m *metrics.MockMetrics) *Dispatcher {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
		metrics:  m,
	}
}

// Dispatch encontra a rota vencedora, aplica o atraso configurado e devolve a resposta.
// Se o contexto for cancelado durante o atraso, nenhuma resposta é produzida e ctx.Err() é devolvido.
func (d *Dispatcher) Dispatch(ctx context.Context, method, path string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	method = model.NormalizeMethod(method)
	matched, err := d.Resolve(ctx, method, path)
	if err != nil {
		d.metrics.DispatchObserved(method, metrics.OutcomeMiss, 0)
		return nil, err
	}

	delay := matched.Delay()
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			d.metrics.DispatchObserved(method, metrics.OutcomeCancelled, delay)
			d.logger.Debug("Despacho cancelado durante o atraso",
				zap.String("route_id", matched.ID),
				zap.Duration("delay", delay))
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	d.metrics.DispatchObserved(method, metrics.OutcomeMatched, delay)

	return &Response{
		RouteID: matched.ID,
		Status:  matched.Status,
		Headers: matched.Headers,
		Body:    matched.Body,
		Delay:   delay,
	}, nil
}

// Resolve devolve uma cópia da rota vencedora sem aplicar o atraso
func (d *Dispatcher) Resolve(ctx context.Context, method, path string) (*model.MockRoute, error) {
	method = model.NormalizeMethod(method)
	generation := d.registry.Generation()
	key := cacheKey(generation, method, path)

	var routeID string
	found, err := d.cache.Get(ctx, key, &routeID)
	if err != nil {
		d.logger.Warn("Erro ao consultar cache de despacho", zap.String("key", key), zap.Error(err))
	} else if found {
		if cached, ok := d.registry.Lookup(generation, routeID); ok && cached.Matches(method, path) {
			return cached, nil
		}
	}

	matched, scannedAt, ok := d.registry.Match(method, path)
	if !ok {
		return nil, &model.NoRouteMatchedError{Method: method, Path: path}
	}

	if err := d.cache.Set(ctx, cacheKey(scannedAt, method, path), matched.ID, d.cacheTTL); err != nil {
		d.logger.Warn("Erro ao armazenar rota no cache de despacho", zap.Error(err))
	}

	return matched, nil
}

// ClearCache descarta todas as entradas memorizadas
func (d *Dispatcher) ClearCache(ctx context.Context) error {
	if err := d.cache.Clear(ctx); err != nil {
		d.logger.Error("Erro ao limpar cache de despacho", zap.Error(err))
		return err
	}
	d.logger.Info("Cache de despacho limpo com sucesso")
	return nil
}

func cacheKey(generation uint64, method, path string) string {
	return fmt.Sprintf("%sdispatch:%d:%s:%s", cache.KeyPrefix, generation, method, path)
}
