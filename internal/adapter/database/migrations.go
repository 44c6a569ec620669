package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// EmbeddedMigrations retorna as migrações distribuídas com o binário
func EmbeddedMigrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// SchemaMigration registra uma migração SQL já aplicada
type SchemaMigration struct {
	Version   int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName define o nome da tabela de controle
func (SchemaMigration) TableName() string {
	return "mock_schema_migrations"
}

// MigrationFile é um script SQL versionado (formato: YYYYMMDDHHMMSS_nome.sql)
type MigrationFile struct {
	Version int64
	Name    string
	Path    string
}

// MigrationManager aplica os scripts SQL que complementam o AutoMigrate das rotas.
// Sem diretório configurado, as migrações embutidas no binário são usadas.
type MigrationManager struct {
	db        *gorm.DB
	logger    *zap.Logger
	directory string
	source    fs.FS
}

// NewMigrationManager cria um novo gerenciador de migrações
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, directory string) *MigrationManager {
	source := EmbeddedMigrations()
	if directory != "" {
		source = os.DirFS(directory)
	}
	return &MigrationManager{
		db:        db,
		logger:    logger,
		directory: directory,
		source:    source,
	}
}

// Pending lista, em ordem de versão, os scripts ainda não aplicados
func (m *MigrationManager) Pending(ctx context.Context) ([]MigrationFile, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("falha ao criar tabela de migrações: %w", err)
	}

	var versions []int64
	if err := m.db.WithContext(ctx).Model(&SchemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("falha ao buscar migrações aplicadas: %w", err)
	}
	applied := make(map[int64]struct{}, len(versions))
	for _, v := range versions {
		applied[v] = struct{}{}
	}

	files, err := m.scan()
	if err != nil {
		return nil, fmt.Errorf("falha ao listar arquivos de migração: %w", err)
	}

	pending := files[:0]
	for _, f := range files {
		if _, ok := applied[f.Version]; !ok {
			pending = append(pending, f)
		}
	}
	return pending, nil
}

// ApplyMigrations aplica cada script pendente em sua própria transação
func (m *MigrationManager) ApplyMigrations(ctx context.Context) error {
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.Debug("Nenhuma migração pendente")
		return nil
	}

	for _, file := range pending {
		script, err := fs.ReadFile(m.source, file.Path)
		if err != nil {
			return fmt.Errorf("falha ao ler %s: %w", file.Path, err)
		}

		err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range splitStatements(string(script)) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("falha ao executar %s: %w", file.Path, err)
				}
			}
			return tx.Create(&SchemaMigration{
				Version:   file.Version,
				Name:      file.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return err
		}

		m.logger.Info("Migração aplicada",
			zap.Int64("version", file.Version),
			zap.String("name", file.Name))
	}

	return nil
}

// scan lê a fonte de migrações; arquivos fora do formato são ignorados com aviso
func (m *MigrationManager) scan() ([]MigrationFile, error) {
	var files []MigrationFile

	err := fs.WalkDir(m.source, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".sql" {
			return nil
		}

		version, name, ok := strings.Cut(strings.TrimSuffix(path.Base(p), ".sql"), "_")
		if !ok || name == "" {
			m.logger.Warn("Arquivo de migração fora do formato", zap.String("file", p))
			return nil
		}
		v, err := strconv.ParseInt(version, 10, 64)
		if err != nil {
			m.logger.Warn("Versão de migração inválida", zap.String("file", p))
			return nil
		}

		files = append(files, MigrationFile{Version: v, Name: name, Path: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// splitStatements separa um script em comandos por ';', ignorando os que aparecem
// em literais de string e comentários. Comandos vazios são descartados.
func splitStatements(script string) []string {
	const (
		plain = iota
		quoted
		lineComment
		blockComment
	)

	var (
		stmts []string
		cur   strings.Builder
		state = plain
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" && s != ";" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]
		next := byte(0)
		if i+1 < len(script) {
			next = script[i+1]
		}

		switch state {
		case quoted:
			if ch == '\'' {
				state = plain
			}
		case lineComment:
			if ch == '\n' {
				state = plain
			}
			continue
		case blockComment:
			if ch == '*' && next == '/' {
				state = plain
				i++
			}
			continue
		default:
			switch {
			case ch == '-' && next == '-':
				state = lineComment
				continue
			case ch == '/' && next == '*':
				state = blockComment
				i++
				continue
			case ch == '\'':
				state = quoted
			case ch == ';':
				flush()
				continue
			}
		}
		cur.WriteByte(ch)
	}
	flush()

	return stmts
}

// CreateMigration cria um script vazio no diretório configurado
func (m *MigrationManager) CreateMigration(name string) (string, error) {
	if m.directory == "" {
		return "", fmt.Errorf("diretório de migrações não configurado")
	}

	name = strings.Join(strings.Fields(strings.ToLower(name)), "_")
	if name == "" {
		return "", fmt.Errorf("nome da migração vazio")
	}

	if err := os.MkdirAll(m.directory, 0o755); err != nil {
		return "", fmt.Errorf("falha ao criar diretório: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format("20060102150405"), name)
	target := filepath.Join(m.directory, filename)
	header := fmt.Sprintf("-- %s\n-- Comandos separados por ';' e aplicados em uma única transação\n", name)
	if err := os.WriteFile(target, []byte(header), 0o644); err != nil {
		return "", fmt.Errorf("falha ao criar arquivo: %w", err)
	}

	return target, nil
}
