package mocks

import (
	"context"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockRouteRepository é um mock para o repository.RouteRepository
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) LoadRoutes(ctx context.Context) ([]*model.MockRoute, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MockRoute), args.Error(1)
}

func (m *MockRouteRepository) SaveRoute(ctx context.Context, route *model.MockRoute) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRouteRepository) DeleteRoute(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
