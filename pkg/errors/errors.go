package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"github.com/diillson/mock-api-server/pkg/resilience"
)

// Tipos de erro comuns
var (
	ErrNotFound           = errors.New("recurso não encontrado")
	ErrBadRequest         = errors.New("requisição inválida")
	ErrUnauthorized       = errors.New("não autorizado")
	ErrForbidden          = errors.New("acesso negado")
	ErrInternalServer     = errors.New("erro interno do servidor")
	ErrServiceUnavailable = errors.New("serviço indisponível")
	ErrTimeout            = errors.New("tempo de espera excedido")
	ErrTooManyRequests    = errors.New("limite de requisições excedido")
)

// APIError representa um erro da API com informações adicionais
type APIError struct {
	Code        int         `json:"-"`
	Message     string      `json:"error"`
	Details     interface{} `json:"details,omitempty"`
	OriginalErr error       `json:"-"`
}

// Error implementa a interface error
func (e *APIError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
	}
	return e.Message
}

// Unwrap permite usar errors.Is e errors.As
func (e *APIError) Unwrap() error {
	return e.OriginalErr
}

// New cria um novo APIError
func New(code int, message string, err error) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		OriginalErr: err,
	}
}

// WithDetails adiciona detalhes ao erro
func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// NotFound cria um erro 404
func NotFound(resource string, err error) *APIError {
	message := fmt.Sprintf("%s não encontrado", resource)
	return New(http.StatusNotFound, message, err)
}

// BadRequest cria um erro 400
func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, message, err)
}

// Unauthorized cria um erro 401
func Unauthorized(message string, err error) *APIError {
	if message == "" {
		message = "Autenticação necessária"
	}
	return New(http.StatusUnauthorized, message, err)
}

// Forbidden cria um erro 403
func Forbidden(message string, err error) *APIError {
	if message == "" {
		message = "Acesso negado"
	}
	return New(http.StatusForbidden, message, err)
}

// InternalServer cria um erro 500
func InternalServer(message string, err error) *APIError {
	if message == "" {
		message = "Erro interno do servidor"
	}
	return New(http.StatusInternalServerError, message, err)
}

// ServiceUnavailable cria um erro 503
func ServiceUnavailable(message string, err error) *APIError {
	if message == "" {
		message = "Serviço indisponível"
	}
	return New(http.StatusServiceUnavailable, message, err)
}

// TooManyRequests cria um erro 429
func TooManyRequests(message string, err error) *APIError {
	if message == "" {
		message = "Limite de requisições excedido"
	}
	return New(http.StatusTooManyRequests, message, err)
}

// FromError classifica um erro de domínio no APIError correspondente
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return BadRequest(validationErr.Reason, err).
			WithDetails(map[string]string{"rule": validationErr.Rule})
	}

	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		return New(http.StatusNotFound, "Route not found", err).
			WithDetails(map[string]string{"id": notFoundErr.ID})
	}

	var missErr *model.NoRouteMatchedError
	if errors.As(err, &missErr) {
		return New(http.StatusNotFound, "No matching mock route", err).
			WithDetails(map[string]string{"method": missErr.Method, "path": missErr.Path})
	}

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return ServiceUnavailable("Armazenamento de rotas temporariamente indisponível", err)
	case errors.Is(err, repository.ErrStorage):
		return ServiceUnavailable("Falha ao persistir rotas", err)
	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "Tempo de espera excedido", err)
	}

	return InternalServer("", err)
}
