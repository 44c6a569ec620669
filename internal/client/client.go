// Package client é o cliente HTTP da API de gerenciamento usado pelo mockctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
)

// Valores padrão de conexão
const (
	DefaultServerURL    = "http://localhost:8080"
	DefaultAdminPath    = "/api/mock"
	DefaultDispatchPath = "/mock"
	DefaultTimeout      = 30 * time.Second
)

// APIError é uma resposta de erro da API de gerenciamento
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Options configura o cliente
type Options struct {
	ServerURL    string
	AdminPath    string
	DispatchPath string
	Token        string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client conversa com a API de gerenciamento e com o endpoint de despacho
type Client struct {
	serverURL    string
	adminPath    string
	dispatchPath string
	token        string
	httpClient   *http.Client
}

// New cria um cliente aplicando os valores padrão às opções vazias
func New(opts Options) *Client {
	if opts.ServerURL == "" {
		opts.ServerURL = DefaultServerURL
	}
	if opts.AdminPath == "" {
		opts.AdminPath = DefaultAdminPath
	}
	if opts.DispatchPath == "" {
		opts.DispatchPath = DefaultDispatchPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		serverURL:    strings.TrimRight(opts.ServerURL, "/"),
		adminPath:    "/" + strings.Trim(opts.AdminPath, "/"),
		dispatchPath: "/" + strings.Trim(opts.DispatchPath, "/"),
		token:        opts.Token,
		httpClient:   opts.HTTPClient,
	}
}

// ListRoutes retorna todas as rotas em ordem de inserção
func (c *Client) ListRoutes(ctx context.Context) ([]wire.Route, error) {
	var out wire.RouteList
	if err := c.doJSON(ctx, http.MethodGet, c.adminPath+"/routes", nil, &out); err != nil {
		return nil, err
	}
	return out.Routes, nil
}

// GetRoute retorna uma rota pelo id
func (c *Client) GetRoute(ctx context.Context, id string) (wire.Route, error) {
	var out wire.RouteEnvelope
	err := c.doJSON(ctx, http.MethodGet, c.adminPath+"/routes/"+url.PathEscape(id), nil, &out)
	return out.Route, err
}

// CreateRoute registra uma nova rota
func (c *Client) CreateRoute(ctx context.Context, input wire.RouteInput) (wire.Route, error) {
	var out wire.RouteEnvelope
	err := c.doJSON(ctx, http.MethodPost, c.adminPath+"/routes", input, &out)
	return out.Route, err
}

// UpdateRoute aplica uma atualização parcial
func (c *Client) UpdateRoute(ctx context.Context, id string, input wire.RouteInput) (wire.Route, error) {
	var out wire.RouteEnvelope
	err := c.doJSON(ctx, http.MethodPatch, c.adminPath+"/routes/"+url.PathEscape(id), input, &out)
	return out.Route, err
}

// DeleteRoute remove uma rota
func (c *Client) DeleteRoute(ctx context.Context, id string) error {
	var out wire.DeleteResult
	return c.doJSON(ctx, http.MethodDelete, c.adminPath+"/routes/"+url.PathEscape(id), nil, &out)
}

// ResolveRoute pergunta qual rota atenderia a um par método/caminho
func (c *Client) ResolveRoute(ctx context.Context, method, path string) (wire.Route, error) {
	query := url.Values{"method": {method}, "path": {path}}
	var out wire.RouteEnvelope
	err := c.doJSON(ctx, http.MethodGet, c.adminPath+"/resolve?"+query.Encode(), nil, &out)
	return out.Route, err
}

// ClearCache descarta o cache de despacho do servidor
func (c *Client) ClearCache(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, c.adminPath+"/cache", nil, nil)
}

// CallResult é a resposta crua de uma chamada ao endpoint de despacho
type CallResult struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Call invoca uma rota mock pelo endpoint de despacho
func (c *Client) Call(ctx context.Context, method, path string, body []byte) (*CallResult, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), c.serverURL+c.dispatchPath+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &CallResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Duration:   time.Since(start),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error   string                 `json:"error"`
			Details map[string]interface{} `json:"details"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
