// Package wire define a representação JSON das rotas mock, compartilhada pela
// API de gerenciamento, pelo armazenamento em arquivo, pelo seed e pelo mockctl.
package wire

import (
	"time"

	"github.com/diillson/mock-api-server/internal/domain/model"
)

// Route é a representação JSON de uma rota mock.
// Um corpo ausente omite a chave "body"; um corpo null é serializado como null.
type Route struct {
	ID        string            `json:"id"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Status    int               `json:"status"`
	Headers   map[string]string `json:"headers"`
	Body      model.Body        `json:"body,omitzero"`
	DelayMs   int               `json:"delay_ms"`
	Enabled   bool              `json:"enabled"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FromModel converte uma rota de domínio para o formato de transporte
func FromModel(route *model.MockRoute) Route {
	headers := make(map[string]string, len(route.Headers))
	for k, v := range route.Headers {
		headers[k] = v
	}
	return Route{
		ID:        route.ID,
		Method:    route.Method,
		Path:      route.Path,
		Status:    route.Status,
		Headers:   headers,
		Body:      route.Body.Clone(),
		DelayMs:   route.DelayMs,
		Enabled:   route.Enabled,
		CreatedAt: route.CreatedAt,
		UpdatedAt: route.UpdatedAt,
	}
}

// FromModels converte uma lista de rotas preservando a ordem
func FromModels(routes []*model.MockRoute) []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, FromModel(r))
	}
	return out
}

// ToModel converte a rota de transporte para o domínio
func (r Route) ToModel() *model.MockRoute {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	return &model.MockRoute{
		ID:        r.ID,
		Method:    model.NormalizeMethod(r.Method),
		Path:      r.Path,
		Status:    r.Status,
		Headers:   headers,
		Body:      r.Body.Clone(),
		DelayMs:   r.DelayMs,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// RouteInput é o payload aceito na criação e na atualização de rotas.
// Campos ausentes ficam nil; id e datas enviados pelo cliente são ignorados.
type RouteInput struct {
	Method  *string                 `json:"method,omitempty"`
	Path    *string                 `json:"path,omitempty"`
	Status  *int                    `json:"status,omitempty"`
	Headers *map[string]interface{} `json:"headers,omitempty"`
	Body    model.Body              `json:"body,omitzero"`
	DelayMs *int                    `json:"delay_ms,omitempty"`
	Enabled *bool                   `json:"enabled,omitempty"`
}

// ToDraft converte o payload em um rascunho de criação
func (in RouteInput) ToDraft() (model.RouteDraft, error) {
	draft := model.RouteDraft{
		Body:    in.Body,
		DelayMs: in.DelayMs,
		Enabled: in.Enabled,
	}
	if in.Method != nil {
		draft.Method = *in.Method
	}
	if in.Path != nil {
		draft.Path = *in.Path
	}
	if in.Status != nil {
		draft.Status = *in.Status
	}
	if in.Headers != nil {
		headers, err := model.HeadersFromJSON(*in.Headers)
		if err != nil {
			return model.RouteDraft{}, err
		}
		draft.Headers = headers
	}
	return draft, nil
}

// ToPatch converte o payload em uma atualização parcial
func (in RouteInput) ToPatch() (model.RoutePatch, error) {
	patch := model.RoutePatch{
		Method:  in.Method,
		Path:    in.Path,
		Status:  in.Status,
		DelayMs: in.DelayMs,
		Enabled: in.Enabled,
	}
	if in.Headers != nil {
		headers, err := model.HeadersFromJSON(*in.Headers)
		if err != nil {
			return model.RoutePatch{}, err
		}
		patch.Headers = &headers
	}
	if !in.Body.IsAbsent() {
		body := in.Body
		patch.Body = &body
	}
	return patch, nil
}

// RouteEnvelope envolve uma única rota nas respostas da API
type RouteEnvelope struct {
	Route Route `json:"route"`
}

// RouteList envolve a listagem de rotas nas respostas da API
type RouteList struct {
	Routes []Route `json:"routes"`
}

// DeleteResult é a resposta de uma remoção bem-sucedida
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// MissResponse é o corpo devolvido quando nenhuma rota atende à requisição
type MissResponse struct {
	Error  string `json:"error"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// MissMessage é a mensagem padrão de MissResponse
const MissMessage = "No matching mock route"
