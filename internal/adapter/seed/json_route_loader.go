package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"go.uber.org/zap"
)

// RouteCreator é a parte do registro usada pelo carregador
type RouteCreator interface {
	Create(ctx context.Context, draft model.RouteDraft) (*model.MockRoute, error)
}

// JSONRouteLoader carrega rotas mock iniciais de um arquivo JSON
type JSONRouteLoader struct {
	creator RouteCreator
	logger  *zap.Logger
}

// NewJSONRouteLoader cria um novo carregador de rotas JSON
func NewJSONRouteLoader(creator RouteCreator, logger *zap.Logger) *JSONRouteLoader {
	return &JSONRouteLoader{
		creator: creator,
		logger:  logger,
	}
}

// LoadRoutesFromJSON cria no registro cada rota do arquivo.
// Rotas rejeitadas pela validação são registradas no log e ignoradas; o número de rotas criadas é retornado.
func (l *JSONRouteLoader) LoadRoutesFromJSON(ctx context.Context, filePath string) (int, error) {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Arquivo de rotas não encontrado", zap.String("path", filePath))
		return 0, nil // Não é erro, apenas não há arquivo
	}
	if err != nil {
		l.logger.Error("Erro ao ler arquivo de rotas", zap.String("path", filePath), zap.Error(err))
		return 0, err
	}

	inputs, err := wire.DecodeSeed(data)
	if err != nil {
		l.logger.Error("Erro ao deserializar arquivo de rotas", zap.String("path", filePath), zap.Error(err))
		return 0, err
	}

	if len(inputs) == 0 {
		l.logger.Info("Nenhuma rota encontrada no arquivo", zap.String("path", filePath))
		return 0, nil
	}

	created := 0
	for i, input := range inputs {
		draft, err := input.ToDraft()
		if err == nil {
			_, err = l.creator.Create(ctx, draft)
		}

		var validationErr *model.ValidationError
		switch {
		case err == nil:
			created++
		case errors.As(err, &validationErr):
			l.logger.Warn("Rota do arquivo ignorada",
				zap.Int("index", i),
				zap.String("rule", validationErr.Rule),
				zap.String("reason", validationErr.Reason))
		default:
			return created, fmt.Errorf("falha ao carregar rota %d de %s: %w", i, filePath, err)
		}
	}

	l.logger.Info("Rotas carregadas com sucesso",
		zap.Int("count", created),
		zap.Int("skipped", len(inputs)-created),
		zap.String("file", filepath.Base(filePath)))
	return created, nil
}
