package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"go.uber.org/zap"
)

// DefaultPath é o arquivo usado quando nenhum caminho é configurado
const DefaultPath = ".data/mock_routes.json"

// RouteStore persiste as rotas mock em um único arquivo JSON.
// Cada escrita regrava o snapshot completo via arquivo temporário e rename.
type RouteStore struct {
	path   string
	now    func() time.Time
	logger *zap.Logger

	mu     sync.Mutex
	routes []wire.Route
	loaded bool
}

// NewRouteStore cria um armazenamento no caminho informado
func NewRouteStore(path string, logger *zap.Logger) *RouteStore {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteStore{
		path:   path,
		now:    time.Now,
		logger: logger,
	}
}

var _ repository.RouteRepository = (*RouteStore)(nil)

// Path retorna o caminho do arquivo
func (s *RouteStore) Path() string {
	return s.path
}

// LoadRoutes lê o arquivo; um arquivo ausente é inicializado vazio
func (s *RouteStore) LoadRoutes(ctx context.Context) ([]*model.MockRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readLocked(); err != nil {
		return nil, err
	}

	routes := make([]*model.MockRoute, 0, len(s.routes))
	for _, r := range s.routes {
		routes = append(routes, r.ToModel())
	}
	return routes, nil
}

// SaveRoute insere ou substitui a rota, mantendo a posição de uma rota existente
func (s *RouteStore) SaveRoute(ctx context.Context, route *model.MockRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}

	updated := make([]wire.Route, len(s.routes), len(s.routes)+1)
	copy(updated, s.routes)

	entry := wire.FromModel(route)
	replaced := false
	for i := range updated {
		if updated[i].ID == route.ID {
			updated[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		updated = append(updated, entry)
	}

	if err := s.writeLocked(updated); err != nil {
		return err
	}
	s.routes = updated
	return nil
}

// DeleteRoute remove a rota pelo id
func (s *RouteStore) DeleteRoute(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}

	updated := make([]wire.Route, 0, len(s.routes))
	for _, r := range s.routes {
		if r.ID != id {
			updated = append(updated, r)
		}
	}
	if len(updated) == len(s.routes) {
		return repository.ErrRouteNotFound
	}

	if err := s.writeLocked(updated); err != nil {
		return err
	}
	s.routes = updated
	return nil
}

// Ping verifica se o diretório do arquivo está acessível
func (s *RouteStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *RouteStore) ensureLoadedLocked() error {
	if s.loaded {
		return nil
	}
	return s.readLocked()
}

func (s *RouteStore) readLocked() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.writeLocked(nil); err != nil {
			return err
		}
		s.routes = nil
		s.loaded = true
		s.logger.Info("Arquivo de rotas inicializado vazio", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("falha ao ler arquivo de rotas: %w", err)
	}

	snap, err := wire.DecodeSnapshot(data)
	if err != nil {
		return err
	}

	s.routes = snap.Routes
	s.loaded = true
	return nil
}

func (s *RouteStore) writeLocked(routes []wire.Route) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("falha ao criar diretório de dados: %w", err)
	}

	data, err := json.MarshalIndent(wire.NewSnapshot(routes, s.now()), "", "  ")
	if err != nil {
		return fmt.Errorf("falha ao serializar rotas: %w", err)
	}

	// Escrita atômica: arquivo temporário seguido de rename
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("falha ao gravar arquivo de rotas: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("falha ao substituir arquivo de rotas: %w", err)
	}
	return nil
}
