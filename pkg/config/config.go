package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix é o prefixo das variáveis de ambiente, ex: MOCKAPI_SERVER_PORT
const EnvPrefix = "MOCKAPI"

// Config representa a configuração completa da aplicação
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	File     FileConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
	Tracing  TracingConfig
	Features FeaturesConfig
	Mock     MockConfig
}

// ServerConfig contém configurações do servidor HTTP
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	TLS             bool
	CertFile        string
	KeyFile         string
	BaseURL         string
	Domains         []string
	AllowedOrigins  []string
}

// StorageConfig define onde as rotas mock são persistidas
type StorageConfig struct {
	Type string // memory, file, database
}

// DatabaseConfig contém configurações do banco de dados
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	SlowThreshold   time.Duration
	MigrationDir    string
	SkipMigrations  bool
}

// FileConfig contém configurações do armazenamento em arquivo
type FileConfig struct {
	Path string
}

// RedisOptions contém configurações específicas para Redis
type RedisOptions struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	MaxConnAge   time.Duration
}

// CacheConfig contém configurações do cache de despacho
type CacheConfig struct {
	Enabled         bool
	Type            string // redis, memory
	TTL             time.Duration
	CleanupInterval time.Duration // apenas para cache em memória
	Redis           RedisOptions
}

// AuthConfig contém configurações de autenticação da API de gerenciamento
type AuthConfig struct {
	Enabled         bool
	JWTSecret       string
	TokenExpiration time.Duration
	Issuer          string
	Audience        string
}

// MetricsConfig contém configurações de métricas
type MetricsConfig struct {
	Enabled        bool
	PrometheusPath string
}

// LoggingConfig contém configurações de logging
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// TracingConfig contém configurações de rastreamento
type TracingConfig struct {
	Enabled       bool
	Provider      string // opentelemetry
	Endpoint      string
	ServiceName   string
	SamplingRatio float64
}

// RateLimitConfig contém os limites aplicados ao despacho
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// CircuitBreakerConfig contém os parâmetros do circuit breaker do armazenamento
type CircuitBreakerConfig struct {
	MaxFailures int
	Timeout     time.Duration
}

// FeaturesConfig contém flags de recursos
type FeaturesConfig struct {
	RateLimiter       bool
	RateLimit         RateLimitConfig
	CircuitBreaker    bool
	CircuitBreakerCfg CircuitBreakerConfig `mapstructure:"circuitBreakerConfig" yaml:"circuitBreakerConfig"`
	HealthCheck       bool
	AdminAPI          bool
	RootDispatch      bool
	AutoRouteRegister bool
}

// MockConfig contém as configurações do servidor de mocks
type MockConfig struct {
	ReservedPrefixes []string
	AdminBasePath    string
	DispatchBasePath string
	SeedFile         string
}

// LoadConfig carrega a configuração de diversas fontes (arquivos, env, defaults)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Definir valores padrão
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Locais para procurar arquivos de configuração
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mockapi")

	// Ler arquivo de configuração
	if err := v.ReadInConfig(); err != nil {
		// Ignorar se o arquivo não for encontrado
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
		}
	}

	// Ler variáveis de ambiente com prefixo MOCKAPI_
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("erro ao mapear configuração: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Defaults retorna a configuração padrão, sem arquivo nem ambiente
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("configuração padrão inválida: %v", err))
	}
	return &config
}

// setDefaults define valores padrão para a configuração
func setDefaults(v *viper.Viper) {
	// Servidor
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.readTimeout", "5s")
	v.SetDefault("server.writeTimeout", "30s") // acima do atraso máximo de uma rota
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.shutdownTimeout", "15s")
	v.SetDefault("server.maxHeaderBytes", 1<<20) // 1 MB
	v.SetDefault("server.tls", false)
	v.SetDefault("server.allowedOrigins", []string{"*"})

	// Armazenamento
	v.SetDefault("storage.type", "file")
	v.SetDefault("file.path", ".data/mock_routes.json")

	// Banco de dados
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".data/mockapi.db")
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.connMaxLifetime", "1h")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.migrationDir", "")
	v.SetDefault("database.skipMigrations", false)

	// Redis
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.poolSize", 10)
	v.SetDefault("cache.redis.minIdleConns", 5)
	v.SetDefault("cache.redis.maxRetries", 3)
	v.SetDefault("cache.redis.readTimeout", "3s")
	v.SetDefault("cache.redis.writeTimeout", "3s")
	v.SetDefault("cache.redis.dialTimeout", "5s")
	v.SetDefault("cache.redis.poolTimeout", "4s")
	v.SetDefault("cache.redis.idleTimeout", "5m")
	v.SetDefault("cache.redis.maxConnAge", "30m")

	// Cache
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.cleanupInterval", "10m")

	// Autenticação
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.tokenExpiration", "24h")
	v.SetDefault("auth.issuer", "mock-api-server")
	v.SetDefault("auth.audience", "mock-api-admin")

	// Métricas
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.prometheusPath", "/metrics")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Tracing
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.provider", "opentelemetry")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.samplingRatio", 0.1) // 10% das requisições
	v.SetDefault("tracing.serviceName", "mock-api-server")

	// Features
	v.SetDefault("features.rateLimiter", false)
	v.SetDefault("features.rateLimit.limit", 100)
	v.SetDefault("features.rateLimit.window", "1m")
	v.SetDefault("features.circuitBreaker", true)
	v.SetDefault("features.circuitBreakerConfig.maxFailures", 5)
	v.SetDefault("features.circuitBreakerConfig.timeout", "30s")
	v.SetDefault("features.healthCheck", true)
	v.SetDefault("features.adminAPI", true)
	v.SetDefault("features.rootDispatch", false)
	v.SetDefault("features.autoRouteRegister", false)

	// Mock
	v.SetDefault("mock.reservedPrefixes", []string{"/api", "/mock"})
	v.SetDefault("mock.adminBasePath", "/api/mock")
	v.SetDefault("mock.dispatchBasePath", "/mock")
	v.SetDefault("mock.seedFile", "")
}

// validateConfig valida a configuração
func validateConfig(config *Config) error {
	// Validar JWT Secret
	if config.Auth.Enabled && config.Auth.JWTSecret == "" {
		return fmt.Errorf("autenticação habilitada, mas auth.jwtSecret não está definido")
	}

	// Validar configuração de TLS
	if config.Server.TLS && len(config.Server.Domains) == 0 {
		if config.Server.CertFile == "" || config.Server.KeyFile == "" {
			return fmt.Errorf("TLS habilitado, mas CertFile/KeyFile ou Domains não estão definidos")
		}
	}

	// Validar armazenamento
	switch config.Storage.Type {
	case "memory":
	case "file":
		if config.File.Path == "" {
			return fmt.Errorf("armazenamento em arquivo requer file.path")
		}
	case "database":
		validDrivers := map[string]bool{"sqlite": true, "mysql": true, "postgres": true}
		if !validDrivers[config.Database.Driver] {
			return fmt.Errorf("driver de banco de dados inválido: %s", config.Database.Driver)
		}
	default:
		return fmt.Errorf("tipo de armazenamento inválido: %s", config.Storage.Type)
	}

	// Validar configuração de cache
	if config.Cache.Enabled {
		validTypes := map[string]bool{"memory": true, "redis": true}
		if !validTypes[config.Cache.Type] {
			return fmt.Errorf("tipo de cache inválido: %s", config.Cache.Type)
		}

		if config.Cache.Type == "redis" && config.Cache.Redis.Address == "" {
			return fmt.Errorf("tipo de cache redis requer um endereço")
		}
	}

	if config.Features.RateLimiter && (config.Features.RateLimit.Limit <= 0 || config.Features.RateLimit.Window <= 0) {
		return fmt.Errorf("rate limiter habilitado requer features.rateLimit.limit e features.rateLimit.window positivos")
	}

	// Validar caminhos do servidor de mocks
	for name, p := range map[string]string{
		"mock.adminBasePath":    config.Mock.AdminBasePath,
		"mock.dispatchBasePath": config.Mock.DispatchBasePath,
	} {
		if !strings.HasPrefix(p, "/") || p == "/" {
			return fmt.Errorf("%s deve começar com '/' e não pode ser a raiz: %q", name, p)
		}
	}

	return nil
}
