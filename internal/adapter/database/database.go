package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config contém configurações para o banco de dados
type Config struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	SlowThreshold   time.Duration
	MigrationDir    string // Vazio usa as migrações embutidas
	SkipMigrations  bool
}

// ParseLogLevel converte o nível configurado para o nível do GORM
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Database guarda a conexão GORM usada pelo repositório de rotas mock
type Database struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations *MigrationManager
}

// NewDatabase abre a conexão, ajusta o pool e prepara o esquema das rotas mock
func NewDatabase(ctx context.Context, config Config, zapLogger *zap.Logger) (*Database, error) {
	dialector, err := openDialector(config.Driver, config.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(gormWriter{zapLogger}, logger.Config{
			SlowThreshold:             config.SlowThreshold,
			LogLevel:                  config.LogLevel,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados %s: %w", config.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("falha ao obter instância do banco de dados: %w", err)
	}
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("falha ao testar conexão com banco de dados: %w", err)
	}

	d := &Database{
		db:         db,
		logger:     zapLogger,
		migrations: NewMigrationManager(db, zapLogger, config.MigrationDir),
	}

	if config.SkipMigrations {
		zapLogger.Info("Migrações puladas pela configuração")
	} else if err := d.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	zapLogger.Info("Banco de dados de rotas mock pronto", zap.String("driver", config.Driver))
	return d, nil
}

// openDialector escolhe o driver GORM; para sqlite o diretório do arquivo é criado
func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(dsn); dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("falha ao criar diretório do banco sqlite: %w", err)
			}
		}
		return sqlite.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("driver de banco de dados não suportado: %s", driver)
	}
}

// DB retorna a instância do GORM DB
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Ping verifica a conexão com o banco de dados
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close fecha a conexão com o banco de dados
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate cria a tabela de rotas e aplica os scripts SQL pendentes
func (d *Database) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(&model.MockRouteEntity{}); err != nil {
		return fmt.Errorf("falha ao migrar tabela de rotas: %w", err)
	}
	if err := d.migrations.ApplyMigrations(ctx); err != nil {
		return fmt.Errorf("falha ao aplicar migrações SQL: %w", err)
	}
	return nil
}

// PendingMigrations lista os scripts SQL ainda não aplicados
func (d *Database) PendingMigrations(ctx context.Context) ([]MigrationFile, error) {
	return d.migrations.Pending(ctx)
}

// CreateMigration cria um novo arquivo de migração
func (d *Database) CreateMigration(name string) (string, error) {
	return d.migrations.CreateMigration(name)
}

// gormWriter encaminha os logs do GORM para o zap
type gormWriter struct {
	logger *zap.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Debug(fmt.Sprintf(format, args...), zap.String("component", "gorm"))
}
