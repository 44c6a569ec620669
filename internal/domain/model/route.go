package model

import (
	"strings"
	"time"
)

// Métodos HTTP aceitos por uma rota mock
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodOptions = "OPTIONS"
	MethodHead    = "HEAD"
)

// Methods lista os métodos aceitos, na ordem exibida em mensagens de erro
var Methods = []string{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodOptions, MethodHead}

// DefaultDelayMs é a latência aplicada quando o rascunho não informa uma
const DefaultDelayMs = 0

// MockRoute é a representação de domínio de uma rota mock
type MockRoute struct {
	ID        string            // Identificador atribuído pelo registro
	Method    string            // Método HTTP
	Path      string            // Caminho literal, ex: /users
	Status    int               // Status HTTP simulado
	Headers   map[string]string // Cabeçalhos da resposta
	Body      Body              // Corpo da resposta
	DelayMs   int               // Latência artificial em milissegundos
	Enabled   bool              // Rotas desabilitadas nunca respondem
	CreatedAt time.Time         // Data de criação
	UpdatedAt time.Time         // Data da última atualização
}

// Delay retorna a latência configurada como time.Duration
func (r *MockRoute) Delay() time.Duration {
	return time.Duration(r.DelayMs) * time.Millisecond
}

// Matches verifica se a rota responde ao par método/caminho.
// A comparação é literal, sem curingas.
func (r *MockRoute) Matches(method, path string) bool {
	return r.Enabled && r.Method == method && r.Path == path
}

// NewerThan aplica o desempate last-write-wins entre duas rotas
func (r *MockRoute) NewerThan(other *MockRoute) bool {
	return r.UpdatedAt.After(other.UpdatedAt)
}

// Clone retorna uma cópia profunda da rota
func (r *MockRoute) Clone() *MockRoute {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Headers = cloneHeaders(r.Headers)
	clone.Body = r.Body.Clone()
	return &clone
}

// RouteDraft contém os campos informados pelo cliente para criar uma rota
type RouteDraft struct {
	Method  string
	Path    string
	Status  int
	Headers map[string]string
	Body    Body
	DelayMs *int
	Enabled *bool
}

// Build aplica os valores padrão e retorna a rota ainda sem identidade
func (d RouteDraft) Build() *MockRoute {
	route := &MockRoute{
		Method:  NormalizeMethod(d.Method),
		Path:    d.Path,
		Status:  d.Status,
		Headers: cloneHeaders(d.Headers),
		Body:    d.Body.Clone(),
		DelayMs: DefaultDelayMs,
		Enabled: true,
	}
	if route.Headers == nil {
		route.Headers = map[string]string{}
	}
	if d.DelayMs != nil {
		route.DelayMs = *d.DelayMs
	}
	if d.Enabled != nil {
		route.Enabled = *d.Enabled
	}
	return route
}

// RoutePatch descreve uma atualização parcial; campos nil ficam inalterados.
// ID e CreatedAt não fazem parte do patch e nunca são sobrescritos.
type RoutePatch struct {
	Method  *string
	Path    *string
	Status  *int
	Headers *map[string]string
	Body    *Body
	DelayMs *int
	Enabled *bool
}

// IsEmpty indica se o patch não altera nenhum campo
func (p RoutePatch) IsEmpty() bool {
	return p.Method == nil && p.Path == nil && p.Status == nil && p.Headers == nil &&
		p.Body == nil && p.DelayMs == nil && p.Enabled == nil
}

// ApplyTo retorna uma cópia da rota com os campos do patch aplicados
func (p RoutePatch) ApplyTo(route *MockRoute) *MockRoute {
	merged := route.Clone()
	if p.Method != nil {
		merged.Method = NormalizeMethod(*p.Method)
	}
	if p.Path != nil {
		merged.Path = *p.Path
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.Headers != nil {
		merged.Headers = cloneHeaders(*p.Headers)
		if merged.Headers == nil {
			merged.Headers = map[string]string{}
		}
	}
	if p.Body != nil {
		merged.Body = p.Body.Clone()
	}
	if p.DelayMs != nil {
		merged.DelayMs = *p.DelayMs
	}
	if p.Enabled != nil {
		merged.Enabled = *p.Enabled
	}
	return merged
}

// NormalizeMethod coloca o método em caixa alta
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

func cloneHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	clone := make(map[string]string, len(headers))
	for k, v := range headers {
		clone[k] = v
	}
	return clone
}
