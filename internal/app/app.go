package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/diillson/mock-api-server/internal/adapter/database"
	mockhttp "github.com/diillson/mock-api-server/internal/adapter/http"
	"github.com/diillson/mock-api-server/internal/adapter/filestore"
	"github.com/diillson/mock-api-server/internal/adapter/seed"
	"github.com/diillson/mock-api-server/internal/app/dispatch"
	"github.com/diillson/mock-api-server/internal/app/route"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/diillson/mock-api-server/internal/domain/repository"
	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/diillson/mock-api-server/internal/infra/middleware"
	"github.com/diillson/mock-api-server/pkg/cache"
	"github.com/diillson/mock-api-server/pkg/config"
	"github.com/diillson/mock-api-server/pkg/ratelimit"
	"github.com/diillson/mock-api-server/pkg/resilience"
	"github.com/diillson/mock-api-server/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *database.Database
	Registry       *route.Registry
	Dispatcher     *dispatch.Dispatcher
	Handler        *mockhttp.Handler
	Middleware     *middleware.Middleware
	Cache          cache.Cache
	MetricsHandler *middleware.MetricsHandler
	MockMetrics    *metrics.MockMetrics

	redisClient *redis.Client
}

// NewApp cria uma nova instância da aplicação com todas as dependências injetadas
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Inicializar métricas em um registro próprio
	promRegistry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.MockMetrics = metrics.NewMockMetrics(promRegistry)
		a.MetricsHandler = middleware.NewMetricsHandler(promRegistry, logger)
	}

	// Inicializar armazenamento das rotas
	repo, storage, err := a.setupStorage(ctx)
	if err != nil {
		return nil, err
	}

	var breaker *resilience.CircuitBreaker
	if repo != nil && cfg.Features.CircuitBreaker {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        "route-storage",
			MaxFailures: cfg.Features.CircuitBreakerCfg.MaxFailures,
			Timeout:     cfg.Features.CircuitBreakerCfg.Timeout,
		}, logger, a.MockMetrics)
	}

	// Inicializar cache de despacho
	if err := a.setupCache(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	// Inicializar registro de rotas
	a.Registry = route.NewRegistry(
		route.WithValidator(model.NewValidator(reservedPrefixes(cfg)...)),
		route.WithRepository(repo, breaker),
		route.WithLogger(logger),
		route.WithMetrics(a.MockMetrics),
	)

	if _, err := a.Registry.Load(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("falha ao carregar rotas mock: %w", err)
	}

	if err := a.seedRoutes(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Dispatcher = dispatch.NewDispatcher(a.Registry, a.Cache, cfg.Cache.TTL, logger, a.MockMetrics)

	// Inicializar gerenciador de chaves JWT
	var keyManager *security.KeyManager
	if cfg.Auth.Enabled {
		keyManager, err = security.NewKeyManager(
			security.ResolveJWTSecret(cfg.Auth.JWTSecret),
			cfg.Auth.Issuer,
			cfg.Auth.Audience,
			logger,
		)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("falha ao inicializar autenticação: %w", err)
		}
	}

	// Inicializar middleware
	mwOptions := middleware.Options{
		KeyManager:     keyManager,
		RateLimit:      cfg.Features.RateLimit.Limit,
		RateWindow:     cfg.Features.RateLimit.Window,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ServiceName:    cfg.Tracing.ServiceName,
	}
	if cfg.Features.RateLimiter {
		if a.redisClient != nil {
			mwOptions.Limiter = ratelimit.NewRedisLimiter(a.redisClient, logger)
		} else {
			mwOptions.Limiter = ratelimit.NewMemoryLimiter()
		}
	}
	a.Middleware = middleware.NewMiddleware(logger, a.MockMetrics, mwOptions)

	// Inicializar handlers HTTP
	a.Handler = mockhttp.NewHandler(a.Registry, a.Dispatcher, storage, a.Cache, logger, a.MockMetrics)

	return a, nil
}

// setupStorage escolhe onde as rotas são persistidas
func (a *App) setupStorage(ctx context.Context) (repository.RouteRepository, mockhttp.Pinger, error) {
	cfg := a.Config

	switch cfg.Storage.Type {
	case "memory":
		a.Logger.Info("Rotas mock mantidas apenas em memória")
		return nil, nil, nil

	case "file":
		store := filestore.NewRouteStore(cfg.File.Path, a.Logger)
		a.Logger.Info("Rotas mock persistidas em arquivo", zap.String("path", store.Path()))
		return store, store, nil

	case "database":
		db, err := database.NewDatabase(ctx, database.Config{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.Database.DSN,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
			SlowThreshold:   cfg.Database.SlowThreshold,
			MigrationDir:    cfg.Database.MigrationDir,
			SkipMigrations:  cfg.Database.SkipMigrations,
		}, a.Logger)
		if err != nil {
			return nil, nil, err
		}
		a.DB = db
		a.Logger.Info("Rotas mock persistidas em banco de dados", zap.String("driver", cfg.Database.Driver))
		return database.NewRouteRepository(db.DB(), a.Logger), db, nil

	default:
		return nil, nil, fmt.Errorf("tipo de armazenamento inválido: %s", cfg.Storage.Type)
	}
}

// setupCache escolhe o cache de despacho
func (a *App) setupCache(ctx context.Context) error {
	cfg := a.Config.Cache

	if !cfg.Enabled {
		a.Cache = cache.NewNoOpCache()
		return nil
	}

	switch cfg.Type {
	case "redis":
		client, err := cache.NewRedisClientWithConfig(ctx, &redis.Options{
			Addr:         cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			DialTimeout:  cfg.Redis.DialTimeout,
			PoolTimeout:  cfg.Redis.PoolTimeout,
			IdleTimeout:  cfg.Redis.IdleTimeout,
			MaxConnAge:   cfg.Redis.MaxConnAge,
		}, a.Logger)
		if err != nil {
			return fmt.Errorf("falha ao conectar ao Redis: %w", err)
		}
		a.redisClient = client
		a.Cache = cache.NewRedisCache(client, a.MockMetrics, a.Logger)
	default:
		a.Cache = cache.NewMemoryCache(cfg.TTL, cfg.CleanupInterval, a.MockMetrics, a.Logger)
	}
	return nil
}

// seedRoutes cria as rotas do arquivo de seed quando o registro está vazio
func (a *App) seedRoutes(ctx context.Context) error {
	seedFile := a.Config.Mock.SeedFile
	if seedFile == "" {
		return nil
	}
	if a.Registry.Len() > 0 && !a.Config.Features.AutoRouteRegister {
		a.Logger.Info("Registro já possui rotas, seed ignorado",
			zap.String("file", seedFile),
			zap.Int("routes", a.Registry.Len()))
		return nil
	}

	loader := seed.NewJSONRouteLoader(a.Registry, a.Logger)
	if _, err := loader.LoadRoutesFromJSON(ctx, seedFile); err != nil {
		return fmt.Errorf("falha ao carregar seed de rotas: %w", err)
	}
	return nil
}

// reservedPrefixes garante que os caminhos do plano de controle nunca sejam sombreados por rotas mock.
// Com despacho na raiz, health e métricas também ficam reservados.
func reservedPrefixes(cfg *config.Config) []string {
	prefixes := append([]string(nil), cfg.Mock.ReservedPrefixes...)
	if len(prefixes) == 0 {
		prefixes = append(prefixes, model.DefaultReservedPrefixes...)
	}
	bases := []string{cfg.Mock.AdminBasePath, cfg.Mock.DispatchBasePath}
	if cfg.Features.RootDispatch {
		if cfg.Features.HealthCheck {
			bases = append(bases, "/health")
		}
		if cfg.Metrics.Enabled && cfg.Metrics.PrometheusPath != "" {
			bases = append(bases, cfg.Metrics.PrometheusPath)
		}
	}
	for _, base := range bases {
		covered := false
		for _, p := range prefixes {
			if len(base) >= len(p) && base[:len(p)] == p {
				covered = true
				break
			}
		}
		if !covered {
			prefixes = append(prefixes, base)
		}
	}
	return prefixes
}

// RegisterRoutes registra todas as rotas no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	cfg := a.Config

	// Configurar middleware global
	router.Use(a.Middleware.Recovery())
	router.Use(a.Middleware.Logger())
	if cfg.Tracing.Enabled {
		router.Use(a.Middleware.Tracing())
	}
	router.Use(a.Middleware.Metrics())

	// Expor endpoint de métricas para Prometheus
	if a.MetricsHandler != nil {
		a.MetricsHandler.RegisterEndpoint(router, cfg.Metrics.PrometheusPath)
	}

	// Rotas públicas
	if cfg.Features.HealthCheck {
		a.Handler.RegisterHealthRoutes(router)
	}

	// API de gerenciamento
	if cfg.Features.AdminAPI {
		admin := router.Group(cfg.Mock.AdminBasePath)
		admin.Use(a.Middleware.CORS(), a.Middleware.SecurityHeaders(), a.Middleware.AuthenticateAdmin())
		a.Handler.RegisterAdminRoutes(admin)
	}

	// Despacho das rotas mock
	mock := router.Group(cfg.Mock.DispatchBasePath)
	mock.Use(a.Middleware.RateLimit())
	mock.Any("/*path", a.Handler.ServeMock)

	if cfg.Features.RootDispatch {
		router.NoRoute(a.Middleware.RateLimit(), a.Handler.ServeRoot)
	} else {
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Rota não encontrada",
				"path":  c.Request.URL.Path,
			})
		})
	}

	a.Logger.Info("Rotas HTTP registradas",
		zap.String("admin", cfg.Mock.AdminBasePath),
		zap.String("dispatch", cfg.Mock.DispatchBasePath),
		zap.Bool("root_dispatch", cfg.Features.RootDispatch))
}

// Close libera conexões abertas pela aplicação
func (a *App) Close() error {
	var errs []error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("falha ao fechar Redis: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("falha ao fechar banco de dados: %w", err))
		}
	}
	return errors.Join(errs...)
}
