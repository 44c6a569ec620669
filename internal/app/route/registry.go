package route

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/diillson/mock-api-server/pkg/resilience"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operações registradas nas métricas de mutação
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opLoad   = "load"
)

// Option configura um Registry
type Option func(*Registry)

// WithClock substitui o relógio usado para createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithIDGenerator substitui o gerador de ids
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		r.newID = newID
	}
}

// WithValidator substitui o validador padrão
func WithValidator(v *model.Validator) Option {
	return func(r *Registry) {
		r.validator = v
	}
}

// WithRepository habilita persistência; o breaker pode ser nil
func WithRepository(repo repository.RouteRepository, breaker *resilience.CircuitBreaker) Option {
	return func(r *Registry) {
		r.repo = repo
		r.breaker = breaker
	}
}

// WithLogger define o logger do registro
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics define as métricas do registro
func WithMetrics(m *metrics.MockMetrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// Registry é o dono exclusivo das rotas mock.
// Mutações são serializadas por um lock exclusivo; leituras devolvem cópias profundas.
type Registry struct {
	mu         sync.RWMutex
	routes     map[string]*model.MockRoute
	order      []string
	lastStamp  time.Time
	generation uint64

	validator *model.Validator
	repo      repository.RouteRepository
	breaker   *resilience.CircuitBreaker
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
	metrics   *metrics.MockMetrics
}

// NewRegistry cria um registro vazio
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		routes: make(map[string]*model.MockRoute),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.validator == nil {
		r.validator = model.NewValidator()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Create valida o rascunho, atribui identidade e armazena a rota
func (r *Registry) Create(ctx context.Context, draft model.RouteDraft) (*model.MockRoute, error) {
	route := draft.Build()
	if err := r.validator.Validate(route); err != nil {
		r.metrics.MutationObserved(opCreate, err)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	route.ID = r.newID()
	if _, exists := r.routes[route.ID]; exists {
		panic(fmt.Sprintf("route id %q assigned twice", route.ID))
	}
	stamp := r.stamp()
	route.CreatedAt = stamp
	route.UpdatedAt = stamp

	if err := r.persist(ctx, func(ctx context.Context) error {
		return r.repo.SaveRoute(ctx, route)
	}); err != nil {
		r.metrics.MutationObserved(opCreate, err)
		return nil, err
	}

	r.commitStamp(stamp)
	r.routes[route.ID] = route
	r.order = append(r.order, route.ID)
	r.generation++

	r.metrics.MutationObserved(opCreate, nil)
	r.metrics.SetRoutesRegistered(len(r.routes))
	r.logger.Info("Rota mock criada",
		zap.String("id", route.ID),
		zap.String("method", route.Method),
		zap.String("path", route.Path),
		zap.Int("status", route.Status))

	return route.Clone(), nil
}

// Update aplica um patch parcial e revalida a rota resultante
func (r *Registry) Update(ctx context.Context, id string, patch model.RoutePatch) (*model.MockRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.routes[id]
	if !ok {
		err := &model.NotFoundError{ID: id}
		r.metrics.MutationObserved(opUpdate, err)
		return nil, err
	}

	merged := patch.ApplyTo(current)
	if err := r.validator.Validate(merged); err != nil {
		r.metrics.MutationObserved(opUpdate, err)
		return nil, err
	}

	stamp := r.stamp()
	merged.UpdatedAt = stamp

	if err := r.persist(ctx, func(ctx context.Context) error {
		return r.repo.SaveRoute(ctx, merged)
	}); err != nil {
		r.metrics.MutationObserved(opUpdate, err)
		return nil, err
	}

	r.commitStamp(stamp)
	r.routes[id] = merged
	r.generation++

	r.metrics.MutationObserved(opUpdate, nil)
	r.logger.Info("Rota mock atualizada",
		zap.String("id", id),
		zap.String("method", merged.Method),
		zap.String("path", merged.Path),
		zap.Bool("enabled", merged.Enabled))

	return merged.Clone(), nil
}

// Delete remove uma rota pelo id
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[id]; !ok {
		err := &model.NotFoundError{ID: id}
		r.metrics.MutationObserved(opDelete, err)
		return err
	}

	if err := r.persist(ctx, func(ctx context.Context) error {
		err := r.repo.DeleteRoute(ctx, id)
		if errors.Is(err, repository.ErrRouteNotFound) {
			// Já ausente no armazenamento: o estado final é o mesmo
			return nil
		}
		return err
	}); err != nil {
		r.metrics.MutationObserved(opDelete, err)
		return err
	}

	delete(r.routes, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.generation++

	r.metrics.MutationObserved(opDelete, nil)
	r.metrics.SetRoutesRegistered(len(r.routes))
	r.logger.Info("Rota mock removida", zap.String("id", id))

	return nil
}

// List retorna cópias de todas as rotas em ordem de inserção
func (r *Registry) List(ctx context.Context) []*model.MockRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]*model.MockRoute, 0, len(r.order))
	for _, id := range r.order {
		routes = append(routes, r.routes[id].Clone())
	}
	return routes
}

// Get retorna uma cópia da rota com o id informado
func (r *Registry) Get(ctx context.Context, id string) (*model.MockRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[id]
	if !ok {
		return nil, &model.NotFoundError{ID: id}
	}
	return route.Clone(), nil
}

// Len retorna o número de rotas registradas
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// Generation muda a cada mutação bem-sucedida
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// Match procura a rota habilitada que atende ao par método/caminho.
// Entre várias candidatas vence a atualizada mais recentemente e, em empate, a inserida por último.
func (r *Registry) Match(method, path string) (*model.MockRoute, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *model.MockRoute
	for _, id := range r.order {
		candidate := r.routes[id]
		if !candidate.Matches(method, path) {
			continue
		}
		if best == nil || !best.NewerThan(candidate) {
			best = candidate
		}
	}
	if best == nil {
		return nil, r.generation, false
	}
	return best.Clone(), r.generation, true
}

// Lookup retorna a rota apenas se o registro ainda estiver na geração informada
func (r *Registry) Lookup(generation uint64, id string) (*model.MockRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if generation != r.generation {
		return nil, false
	}
	route, ok := r.routes[id]
	if !ok {
		return nil, false
	}
	return route.Clone(), true
}

// Load reconstrói o registro a partir do armazenamento.
// Rotas inválidas ou com id repetido são ignoradas com um aviso.
func (r *Registry) Load(ctx context.Context) (int, error) {
	if r.repo == nil {
		return 0, nil
	}

	var stored []*model.MockRoute
	if err := r.persist(ctx, func(ctx context.Context) error {
		var err error
		stored, err = r.repo.LoadRoutes(ctx)
		return err
	}); err != nil {
		r.metrics.MutationObserved(opLoad, err)
		return 0, err
	}

	routes := make(map[string]*model.MockRoute, len(stored))
	order := make([]string, 0, len(stored))
	var lastStamp time.Time

	for _, route := range stored {
		if _, dup := routes[route.ID]; dup || route.ID == "" {
			r.logger.Warn("Rota persistida com id vazio ou repetido ignorada", zap.String("id", route.ID))
			continue
		}
		if err := r.validator.Validate(route); err != nil {
			r.logger.Warn("Rota persistida inválida ignorada",
				zap.String("id", route.ID),
				zap.Error(err))
			continue
		}
		routes[route.ID] = route.Clone()
		order = append(order, route.ID)
		if route.UpdatedAt.After(lastStamp) {
			lastStamp = route.UpdatedAt
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.routes = routes
	r.order = order
	if lastStamp.After(r.lastStamp) {
		r.lastStamp = lastStamp
	}
	r.generation++

	r.metrics.MutationObserved(opLoad, nil)
	r.metrics.SetRoutesRegistered(len(routes))
	r.logger.Info("Rotas mock carregadas do armazenamento", zap.Int("count", len(routes)))

	return len(routes), nil
}

// stamp retorna um instante estritamente maior que o último atribuído.
// Deve ser chamado com o lock de escrita.
func (r *Registry) stamp() time.Time {
	now := r.now().UTC().Truncate(time.Microsecond)
	if !now.After(r.lastStamp) {
		now = r.lastStamp.Add(time.Microsecond)
	}
	return now
}

func (r *Registry) commitStamp(stamp time.Time) {
	r.lastStamp = stamp
}

// persist executa a operação de armazenamento, se houver, protegida pelo circuit breaker
func (r *Registry) persist(ctx context.Context, fn func(context.Context) error) error {
	if r.repo == nil {
		return nil
	}

	var err error
	if r.breaker != nil {
		err = r.breaker.Execute(ctx, fn)
	} else {
		err = fn(ctx)
	}
	if err != nil {
		r.logger.Error("Falha ao persistir rotas mock", zap.Error(err))
		return fmt.Errorf("%w: %w", repository.ErrStorage, err)
	}
	return nil
}
