package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/diillson/mock-api-server/internal/app"
	"github.com/diillson/mock-api-server/pkg/config"
	"github.com/diillson/mock-api-server/pkg/logging"
	"github.com/diillson/mock-api-server/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config", "Diretório do arquivo config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro ao carregar configuração: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Servidor de mocks encerrado com erro", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, telemetry.Options{
			ServiceName:   cfg.Tracing.ServiceName,
			Endpoint:      cfg.Tracing.Endpoint,
			SamplingRatio: cfg.Tracing.SamplingRatio,
		}, logger)
		if err != nil {
			logger.Error("Falha ao inicializar tracer; seguindo sem tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	initCtx, span := otel.Tracer("mockapi.main").Start(ctx, "Server Initialization")
	application, err := app.NewApp(initCtx, cfg, logger)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return fmt.Errorf("falha ao inicializar aplicação: %w", err)
	}
	span.End()
	defer application.Close()

	if os.Getenv("ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	application.RegisterRoutes(router)

	server := &http.Server{
		Addr:           net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	mode := configureTLS(server, cfg.Server, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Servidor de mocks ouvindo",
			zap.String("addr", server.Addr),
			zap.Stringer("tls", mode),
			zap.Int("routes", application.Registry.Len()))

		var err error
		switch mode {
		case tlsFiles:
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		case tlsAutocert:
			err = server.ListenAndServeTLS("", "")
		default:
			err = server.ListenAndServe()
		}
		serveErr <- err
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Encerrando servidor de mocks...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("falha ao encerrar servidor: %w", err)
	}

	logger.Info("Servidor encerrado")
	return nil
}
