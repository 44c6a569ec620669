package repository

import (
	"context"
	"errors"

	"github.com/diillson/mock-api-server/internal/domain/model"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrStorage       = errors.New("route storage failure")
)

// RouteRepository define a interface para persistência das rotas mock
type RouteRepository interface {
	// LoadRoutes retorna todas as rotas persistidas, em ordem de inserção
	LoadRoutes(ctx context.Context) ([]*model.MockRoute, error)

	// SaveRoute insere ou substitui uma rota pelo id, preservando sua posição
	SaveRoute(ctx context.Context, route *model.MockRoute) error

	// DeleteRoute remove uma rota pelo id
	DeleteRoute(ctx context.Context, id string) error
}
