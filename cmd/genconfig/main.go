package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/diillson/mock-api-server/pkg/config"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		outputPath string
		force      bool
	)

	flag.StringVar(&outputPath, "output", "config.yaml", "Caminho para o arquivo de configuração de saída")
	flag.BoolVar(&force, "force", false, "Sobrescrever arquivo se existir")
	flag.Parse()

	// Verificar se o arquivo já existe
	if _, err := os.Stat(outputPath); err == nil && !force {
		fmt.Printf("Erro: arquivo %s já existe. Use --force para sobrescrever.\n", outputPath)
		os.Exit(1)
	}

	// Partir dos valores padrão e preencher exemplos
	cfg := config.Defaults()
	cfg.Server.CertFile = "/path/to/cert.pem"
	cfg.Server.KeyFile = "/path/to/key.pem"
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Mock.SeedFile = "./config/seed_routes.json"

	// Converter para YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Erro ao serializar configuração: %v\n", err)
		os.Exit(1)
	}

	yamlStr := string(data)

	// Documentar as opções menos óbvias ao lado do valor
	annotations := map[string]string{
		`(\s+skipmigrations:\s+false)`: `$1  # Opção: false aplica migrações (padrão), true pula`,
		`(\s+type:\s+file)`:            `$1  # memory, file ou database`,
		`(\s+rootdispatch:\s+false)`:   `$1  # true despacha qualquer caminho não atendido por outro handler`,
		`(\s+jwtsecret:\s+"")`:         `$1  # ou JWT_SECRET_KEY; mínimo de 32 caracteres`,
	}
	for pattern, replacement := range annotations {
		yamlStr = regexp.MustCompile(pattern).ReplaceAllString(yamlStr, replacement)
	}

	// Escrever arquivo
	if err := os.WriteFile(outputPath, []byte(yamlStr), 0644); err != nil {
		fmt.Printf("Erro ao escrever arquivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Arquivo de configuração gerado em: %s\n", outputPath)
}
