package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/diillson/mock-api-server/internal/adapter/database"
	"github.com/diillson/mock-api-server/pkg/config"
	"github.com/diillson/mock-api-server/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	defaults := config.Defaults()

	var (
		action       string
		name         string
		driver       string
		dsn          string
		migrationDir string
	)

	flag.StringVar(&action, "action", "migrate", "Ação (migrate, status, create)")
	flag.StringVar(&name, "name", "", "Nome da migração (apenas para action=create)")
	flag.StringVar(&driver, "driver", defaults.Database.Driver, "Driver de banco de dados (sqlite, mysql, postgres)")
	flag.StringVar(&dsn, "dsn", defaults.Database.DSN, "DSN do banco de dados")
	flag.StringVar(&migrationDir, "dir", "", "Diretório de migrações (vazio usa as migrações embutidas)")
	flag.Parse()

	// Inicializar logger
	logger, err := logging.NewLogger("info", "console")
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Configurar banco de dados
	dbConfig := database.Config{
		Driver:          driver,
		DSN:             dsn,
		MaxIdleConns:    defaults.Database.MaxIdleConns,
		MaxOpenConns:    defaults.Database.MaxOpenConns,
		ConnMaxLifetime: defaults.Database.ConnMaxLifetime,
		LogLevel:        database.ParseLogLevel("info"),
		SlowThreshold:   defaults.Database.SlowThreshold,
		MigrationDir:    migrationDir,
	}

	ctx := context.Background()

	switch action {
	case "migrate":
		// NewDatabase aplica as migrações pendentes
		db, err := database.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Migrações aplicadas com sucesso")

	case "status":
		dbConfig.SkipMigrations = true
		db, err := database.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		pending, err := db.PendingMigrations(ctx)
		if err != nil {
			logger.Fatal("Falha ao listar migrações", zap.Error(err))
		}
		for _, m := range pending {
			fmt.Printf("%d\t%s\n", m.Version, m.Name)
		}
		logger.Info("Migrações pendentes", zap.Int("count", len(pending)))

	case "create":
		if name == "" {
			logger.Fatal("Nome da migração é obrigatório para action=create")
		}
		if migrationDir == "" {
			logger.Fatal("Diretório de migrações é obrigatório para action=create")
		}

		dbConfig.SkipMigrations = true
		db, err := database.NewDatabase(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("Falha ao inicializar banco de dados", zap.Error(err))
		}
		defer db.Close()

		migrationPath, err := db.CreateMigration(name)
		if err != nil {
			logger.Fatal("Falha ao criar migração", zap.Error(err))
		}

		logger.Info("Migração criada", zap.String("path", migrationPath))

	default:
		logger.Fatal("Ação desconhecida", zap.String("action", action))
	}
}
