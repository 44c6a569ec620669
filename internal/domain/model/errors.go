package model

import (
	"errors"
	"fmt"
)

// Sentinelas usadas com errors.Is
var (
	ErrValidation     = errors.New("invalid mock route")
	ErrNotFound       = errors.New("mock route not found")
	ErrNoRouteMatched = errors.New("no matching mock route")
)

// Regras de validação reportadas em ValidationError
const (
	RulePath         = "path"
	RuleReservedPath = "reserved_prefix"
	RuleStatus       = "status"
	RuleDelay        = "delay_ms"
	RuleBody         = "body"
	RuleBodySize     = "body_size"
	RuleHeaders      = "headers"
	RuleMethod       = "method"
)

// ValidationError indica uma rota rejeitada antes de chegar ao registro
type ValidationError struct {
	Rule   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Is permite errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError indica um id inexistente no registro
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: id=%s", ErrNotFound, e.ID)
}

// Is permite errors.Is(err, ErrNotFound)
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NoRouteMatchedError indica que nenhuma rota habilitada atende ao par método/caminho
type NoRouteMatchedError struct {
	Method string
	Path   string
}

func (e *NoRouteMatchedError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrNoRouteMatched, e.Method, e.Path)
}

// Is permite errors.Is(err, ErrNoRouteMatched)
func (e *NoRouteMatchedError) Is(target error) bool {
	return target == ErrNoRouteMatched
}

func invalid(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}
