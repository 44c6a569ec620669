package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/client"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/spf13/cobra"
)

// routeFlags guarda as flags compartilhadas por create e update
type routeFlags struct {
	method   string
	path     string
	status   int
	headers  []string
	body     string
	bodyFile string
	nullBody bool
	delayMs  int
	enabled  bool
}

func (f *routeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.method, "method", "m", "GET", "Método HTTP da rota")
	cmd.Flags().StringVarP(&f.path, "path", "p", "", "Caminho da rota, ex: /users")
	cmd.Flags().IntVarP(&f.status, "status", "s", 200, "Status HTTP da resposta")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Cabeçalho da resposta no formato 'Nome: valor' (repetível)")
	cmd.Flags().StringVarP(&f.body, "body", "b", "", "Corpo JSON da resposta")
	cmd.Flags().StringVar(&f.bodyFile, "body-file", "", "Arquivo com o corpo JSON da resposta")
	cmd.Flags().BoolVar(&f.nullBody, "null-body", false, "Responder com o literal JSON null")
	cmd.Flags().IntVarP(&f.delayMs, "delay", "d", 0, "Atraso da resposta em milissegundos")
	cmd.Flags().BoolVar(&f.enabled, "enabled", true, "Rota habilitada")
}

// toInput monta o payload apenas com as flags informadas
func (f *routeFlags) toInput(cmd *cobra.Command) (wire.RouteInput, error) {
	var input wire.RouteInput
	changed := cmd.Flags().Changed

	if changed("method") {
		input.Method = &f.method
	}
	if changed("path") {
		input.Path = &f.path
	}
	if changed("status") {
		input.Status = &f.status
	}
	if changed("delay") {
		input.DelayMs = &f.delayMs
	}
	if changed("enabled") {
		input.Enabled = &f.enabled
	}

	if changed("header") {
		headers := make(map[string]interface{}, len(f.headers))
		for _, h := range f.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok {
				return input, fmt.Errorf("cabeçalho inválido %q, use 'Nome: valor'", h)
			}
			headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		input.Headers = &headers
	}

	sources := 0
	for _, name := range []string{"body", "body-file", "null-body"} {
		if changed(name) {
			sources++
		}
	}
	if sources > 1 {
		return input, errors.New("use apenas uma entre --body, --body-file e --null-body")
	}

	switch {
	case changed("null-body") && f.nullBody:
		input.Body = model.NullBody()
	case changed("body"):
		body, err := model.RawBody([]byte(f.body))
		if err != nil {
			return input, fmt.Errorf("corpo inválido: %w", err)
		}
		input.Body = body
	case changed("body-file"):
		data, err := os.ReadFile(f.bodyFile)
		if err != nil {
			return input, fmt.Errorf("erro ao ler arquivo do corpo: %w", err)
		}
		body, err := model.RawBody(data)
		if err != nil {
			return input, fmt.Errorf("corpo inválido em %s: %w", f.bodyFile, err)
		}
		input.Body = body
	}

	return input, nil
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Lista as rotas mock registradas",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		routes, err := newClient().ListRoutes(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(wire.RouteList{Routes: routes})
		}
		printRouteTable(routes)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Mostra uma rota mock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		route, err := newClient().GetRoute(cmd.Context(), args[0])
		if err != nil {
			return describeError(err, args[0])
		}
		return printJSON(wire.RouteEnvelope{Route: route})
	},
}

var createFlags routeFlags

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Cria uma rota mock",
	Example: `  mockctl create -m GET -p /users -s 200 -b '[{"id":1}]'
  mockctl create -m POST -p /login -s 401 -H 'WWW-Authenticate: Bearer' --delay 500`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := createFlags.toInput(cmd)
		if err != nil {
			return err
		}
		// Método e status têm valores padrão na CLI mesmo sem a flag
		if input.Method == nil {
			input.Method = &createFlags.method
		}
		if input.Status == nil {
			input.Status = &createFlags.status
		}

		route, err := newClient().CreateRoute(cmd.Context(), input)
		if err != nil {
			return describeError(err, "")
		}
		if jsonOutput {
			return printJSON(wire.RouteEnvelope{Route: route})
		}
		fmt.Printf("Rota criada: %s %s %s\n", route.ID, route.Method, route.Path)
		return nil
	},
}

var updateFlags routeFlags

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Atualiza parcialmente uma rota mock",
	Example: `  mockctl update 3f1c... --status 503
  mockctl update 3f1c... --enabled=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := updateFlags.toInput(cmd)
		if err != nil {
			return err
		}

		route, err := newClient().UpdateRoute(cmd.Context(), args[0], input)
		if err != nil {
			return describeError(err, args[0])
		}
		if jsonOutput {
			return printJSON(wire.RouteEnvelope{Route: route})
		}
		fmt.Printf("Rota atualizada: %s %s %s\n", route.ID, route.Method, route.Path)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Remove uma rota mock",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteRoute(cmd.Context(), args[0]); err != nil {
			return describeError(err, args[0])
		}
		fmt.Printf("Rota removida: %s\n", args[0])
		return nil
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Descarta o cache de despacho do servidor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().ClearCache(cmd.Context()); err != nil {
			return describeError(err, "")
		}
		fmt.Println("Cache limpo")
		return nil
	},
}

func describeError(err error, id string) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode == 404 && id != "" {
		return fmt.Errorf("rota %q não encontrada", id)
	}
	if rule, ok := apiErr.Details["rule"]; ok {
		return fmt.Errorf("%s (regra: %v)", apiErr.Message, rule)
	}
	return apiErr
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	createFlags.register(createCmd)
	updateFlags.register(updateCmd)

	rootCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd, clearCacheCmd)
}
