package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/diillson/mock-api-server/pkg/config"
	"github.com/diillson/mock-api-server/pkg/security"
	"go.uber.org/zap"
)

func main() {
	var (
		subject    string
		role       string
		duration   time.Duration
		configPath string
	)

	flag.StringVar(&subject, "subject", "", "Identificação de quem usará o token")
	flag.StringVar(&role, "role", security.RoleAdmin, "Papel gravado no token")
	flag.DurationVar(&duration, "duration", 0, "Validade do token (padrão: auth.tokenExpiration)")
	flag.StringVar(&configPath, "config", "./config", "Diretório do arquivo config.yaml")
	flag.Parse()

	if subject == "" {
		fmt.Println("Erro: o subject do token não pode ser vazio.")
		fmt.Println("Uso: go run cmd/tools/generate_token.go -subject=<nome>")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}
	if duration <= 0 {
		duration = cfg.Auth.TokenExpiration
	}

	keyManager, err := security.NewKeyManager(
		security.ResolveJWTSecret(cfg.Auth.JWTSecret),
		cfg.Auth.Issuer,
		cfg.Auth.Audience,
		zap.NewNop(),
	)
	if err != nil {
		fmt.Printf("Erro ao inicializar chave JWT: %v\n", err)
		fmt.Println("Configure JWT_SECRET_KEY ou auth.jwtSecret no config.yaml")
		os.Exit(1)
	}

	tokenString, err := keyManager.GenerateToken(subject, role, duration)
	if err != nil {
		fmt.Printf("Erro ao gerar token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nToken JWT gerado:")
	fmt.Println("------------------------------------------")
	fmt.Println(tokenString)
	fmt.Println("------------------------------------------")
	fmt.Printf("\nSubject: %s\n", subject)
	fmt.Printf("Papel: %s\n", role)
	fmt.Printf("Expira em: %s\n", time.Now().Add(duration).Format(time.RFC3339))
	fmt.Println("\nUse este token no cabeçalho Authorization ou com mockctl --token:")
	fmt.Printf("Authorization: Bearer %s\n", tokenString)
}
