package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const routesTable = "mock_routes"

// RouteRepository implementa repository.RouteRepository sobre GORM
type RouteRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRouteRepository cria um novo repositório de rotas
func NewRouteRepository(db *gorm.DB, logger *zap.Logger) *RouteRepository {
	return &RouteRepository{
		db:     db,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("mockapi.repository.route"),
	}
}

var _ repository.RouteRepository = (*RouteRepository)(nil)

// LoadRoutes retorna todas as rotas em ordem de inserção
func (r *RouteRepository) LoadRoutes(ctx context.Context) ([]*model.MockRoute, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.LoadRoutes",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", routesTable),
		),
	)
	defer span.End()

	var entities []model.MockRouteEntity
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&entities).Error; err != nil {
		r.logger.Error("falha ao buscar rotas", zap.Error(err))
		recordSpanError(span, "database error", err)
		return nil, fmt.Errorf("falha ao buscar rotas: %w", err)
	}

	routes := make([]*model.MockRoute, 0, len(entities))
	conversionErrors := 0
	for i := range entities {
		route, err := entityToModel(&entities[i])
		if err != nil {
			r.logger.Error("falha ao converter entidade para modelo",
				zap.String("id", entities[i].ID),
				zap.Error(err))
			// Registrar erro de conversão no span, mas continuar
			span.AddEvent("error.conversion",
				trace.WithAttributes(
					attribute.String("entity.id", entities[i].ID),
					attribute.String("error.message", err.Error()),
				),
			)
			conversionErrors++
			continue
		}
		routes = append(routes, route)
	}

	span.SetAttributes(
		attribute.Int("routes.count", len(routes)),
		attribute.Int("routes.conversion_errors", conversionErrors),
	)
	span.SetStatus(codes.Ok, "")
	return routes, nil
}

// SaveRoute insere a rota ou substitui todos os campos de uma rota existente.
// Uma rota nova recebe a próxima posição; uma existente mantém a sua.
func (r *RouteRepository) SaveRoute(ctx context.Context, route *model.MockRoute) error {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.SaveRoute",
		trace.WithAttributes(
			attribute.String("db.operation", "upsert"),
			attribute.String("db.table", routesTable),
			attribute.String("route.id", route.ID),
			attribute.String("route.method", route.Method),
			attribute.String("route.path", route.Path),
		),
	)
	defer span.End()

	entity, err := modelToEntity(route)
	if err != nil {
		recordSpanError(span, "conversion error", err)
		return fmt.Errorf("falha ao converter modelo para entidade: %w", err)
	}

	inserted := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.MockRouteEntity
		err := tx.Select("seq").Where("id = ?", entity.ID).Take(&existing).Error
		switch {
		case err == nil:
			entity.Seq = existing.Seq
			return tx.Save(entity).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			var maxSeq int64
			if err := tx.Model(&model.MockRouteEntity{}).
				Select("COALESCE(MAX(seq), 0)").
				Scan(&maxSeq).Error; err != nil {
				return err
			}
			entity.Seq = maxSeq + 1
			inserted = true
			return tx.Create(entity).Error
		default:
			return err
		}
	})
	if err != nil {
		r.logger.Error("falha ao salvar rota",
			zap.String("id", route.ID),
			zap.Error(err))
		recordSpanError(span, "database error", err)
		return fmt.Errorf("falha ao salvar rota: %w", err)
	}

	span.SetAttributes(
		attribute.Bool("route.inserted", inserted),
		attribute.Int64("route.seq", entity.Seq),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteRoute remove uma rota pelo id
func (r *RouteRepository) DeleteRoute(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.DeleteRoute",
		trace.WithAttributes(
			attribute.String("db.operation", "delete"),
			attribute.String("db.table", routesTable),
			attribute.String("route.id", id),
		),
	)
	defer span.End()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MockRouteEntity{})
	if result.Error != nil {
		r.logger.Error("falha ao excluir rota",
			zap.String("id", id),
			zap.Error(result.Error))
		recordSpanError(span, "database error", result.Error)
		return fmt.Errorf("falha ao excluir rota: %w", result.Error)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", result.RowsAffected))

	if result.RowsAffected == 0 {
		span.SetStatus(codes.Error, "no rows affected")
		span.SetAttributes(attribute.Bool("route.found", false))
		return repository.ErrRouteNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Count retorna o número de rotas persistidas
func (r *RouteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.MockRouteEntity{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("falha ao contar rotas: %w", err)
	}
	return count, nil
}

func recordSpanError(span trace.Span, description string, err error) {
	span.SetStatus(codes.Error, description)
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String("error.message", err.Error()),
	)
}

// entityToModel converte uma entidade em um modelo
func entityToModel(entity *model.MockRouteEntity) (*model.MockRoute, error) {
	headers := map[string]string{}
	if entity.HeadersJSON != "" {
		if err := json.Unmarshal([]byte(entity.HeadersJSON), &headers); err != nil {
			return nil, fmt.Errorf("cabeçalhos inválidos: %w", err)
		}
	}

	var body model.Body
	switch model.BodyKind(entity.BodyKind) {
	case model.BodyAbsent:
		body = model.NoBody()
	case model.BodyNull:
		body = model.NullBody()
	case model.BodyValue:
		parsed, err := model.RawBody([]byte(entity.BodyJSON))
		if err != nil {
			return nil, fmt.Errorf("corpo inválido: %w", err)
		}
		body = parsed
	default:
		return nil, fmt.Errorf("tipo de corpo desconhecido: %d", entity.BodyKind)
	}

	return &model.MockRoute{
		ID:        entity.ID,
		Method:    entity.Method,
		Path:      entity.Path,
		Status:    entity.Status,
		Headers:   headers,
		Body:      body,
		DelayMs:   entity.DelayMs,
		Enabled:   entity.Enabled,
		CreatedAt: entity.CreatedAt.UTC(),
		UpdatedAt: entity.UpdatedAt.UTC(),
	}, nil
}

// modelToEntity converte um modelo em uma entidade
func modelToEntity(route *model.MockRoute) (*model.MockRouteEntity, error) {
	headers := route.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	headersJSON, err := json.Marshal(headers)
	if err != nil {
		return nil, err
	}

	entity := &model.MockRouteEntity{
		ID:          route.ID,
		Method:      route.Method,
		Path:        route.Path,
		Status:      route.Status,
		HeadersJSON: string(headersJSON),
		BodyKind:    int(route.Body.Kind()),
		DelayMs:     route.DelayMs,
		Enabled:     route.Enabled,
		CreatedAt:   route.CreatedAt.UTC(),
		UpdatedAt:   route.UpdatedAt.UTC(),
	}
	if route.Body.Kind() == model.BodyValue {
		entity.BodyJSON = string(route.Body.Bytes())
	}

	return entity, nil
}
