package model

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Limites de uma rota mock
const (
	MinStatus    = 200
	MaxStatus    = 599
	MaxDelayMs   = 10000
	MaxBodyBytes = 512 * 1024
)

// DefaultReservedPrefixes são os prefixos do plano de controle
var DefaultReservedPrefixes = []string{"/api", "/mock"}

// Validator rejeita rotas malformadas antes que entrem no registro
type Validator struct {
	reservedPrefixes []string
	methods          map[string]bool
}

// NewValidator cria um validador; sem prefixos usa DefaultReservedPrefixes
func NewValidator(reservedPrefixes ...string) *Validator {
	if len(reservedPrefixes) == 0 {
		reservedPrefixes = DefaultReservedPrefixes
	}

	prefixes := make([]string, 0, len(reservedPrefixes))
	for _, p := range reservedPrefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}

	methods := make(map[string]bool, len(Methods))
	for _, m := range Methods {
		methods[m] = true
	}

	return &Validator{
		reservedPrefixes: prefixes,
		methods:          methods,
	}
}

// ReservedPrefixes retorna uma cópia dos prefixos reservados
func (v *Validator) ReservedPrefixes() []string {
	return append([]string(nil), v.reservedPrefixes...)
}

// Validate aplica todas as regras; a primeira falha interrompe a verificação
func (v *Validator) Validate(route *MockRoute) error {
	if !strings.HasPrefix(route.Path, "/") {
		return invalid(RulePath, "path must start with '/' (got %q)", route.Path)
	}

	for _, prefix := range v.reservedPrefixes {
		if strings.HasPrefix(route.Path, prefix) {
			return invalid(RuleReservedPath, "path %q uses the reserved prefix %q", route.Path, prefix)
		}
	}

	if route.Status < MinStatus || route.Status > MaxStatus {
		return invalid(RuleStatus, "status must be between %d and %d (got %d)", MinStatus, MaxStatus, route.Status)
	}

	if route.DelayMs < 0 || route.DelayMs > MaxDelayMs {
		return invalid(RuleDelay, "delay_ms must be between 0 and %d (got %d)", MaxDelayMs, route.DelayMs)
	}

	if err := validateBody(route.Body); err != nil {
		return err
	}

	// Ordem estável para que o cabeçalho reportado seja sempre o mesmo
	for _, name := range slices.Sorted(maps.Keys(route.Headers)) {
		if err := validateHeader(name, route.Headers[name]); err != nil {
			return err
		}
	}

	if !v.methods[route.Method] {
		return invalid(RuleMethod, "method must be one of %s (got %q)", strings.Join(Methods, ", "), route.Method)
	}

	return nil
}

// HeadersFromJSON converte cabeçalhos recebidos como JSON genérico.
// Valores que não são strings violam a regra de cabeçalhos.
func HeadersFromJSON(raw map[string]interface{}) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		value := raw[name]
		str, ok := value.(string)
		if !ok {
			return nil, invalid(RuleHeaders, "header %q must have a string value (got %T)", name, value)
		}
		if err := validateHeader(name, str); err != nil {
			return nil, err
		}
		headers[name] = str
	}
	return headers, nil
}

func validateBody(body Body) error {
	if body.Kind() == BodyValue && !isJSON(body.raw) {
		return invalid(RuleBody, "body must be valid JSON")
	}
	if size := body.Size(); size > MaxBodyBytes {
		return invalid(RuleBodySize, "body exceeds %d bytes limit (got %d)", MaxBodyBytes, size)
	}
	return nil
}

func validateHeader(name, value string) error {
	if name == "" {
		return invalid(RuleHeaders, "header names must not be empty")
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return invalid(RuleHeaders, "header name %q is not a valid HTTP field name", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return invalid(RuleHeaders, "header %q has an invalid value", name)
	}
	return nil
}

func isJSON(raw []byte) bool {
	return len(raw) > 0 && json.Valid(raw)
}
