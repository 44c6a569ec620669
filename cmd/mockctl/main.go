package main

import (
	"fmt"
	"os"
	"time"

	"github.com/diillson/mock-api-server/internal/client"
	"github.com/spf13/cobra"
)

var (
	// Flags persistentes disponíveis para todos os subcomandos
	serverURL    string
	adminPath    string
	dispatchPath string
	token        string
	timeout      time.Duration
	jsonOutput   bool
)

var rootCmd = &cobra.Command{
	Use:   "mockctl",
	Short: "mockctl gerencia as rotas de um servidor de mocks",
	Long: `mockctl conversa com a API de gerenciamento do servidor de mocks.

O endereço do servidor e o token podem vir das flags ou das variáveis
MOCKAPI_SERVER e MOCKAPI_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MOCKAPI_SERVER", client.DefaultServerURL), "URL base do servidor de mocks")
	rootCmd.PersistentFlags().StringVar(&adminPath, "admin-path", client.DefaultAdminPath, "Prefixo da API de gerenciamento")
	rootCmd.PersistentFlags().StringVar(&dispatchPath, "dispatch-path", client.DefaultDispatchPath, "Prefixo do endpoint de despacho")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("MOCKAPI_TOKEN"), "Token JWT de administrador")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "Tempo máximo de cada requisição")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Saída em JSON")
}

func newClient() *client.Client {
	return client.New(client.Options{
		ServerURL:    serverURL,
		AdminPath:    adminPath,
		DispatchPath: dispatchPath,
		Token:        token,
		Timeout:      timeout,
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}
