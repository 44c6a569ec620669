package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// TracerProvider embrulha o provider do SDK e a conexão com o coletor
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	conn     *grpc.ClientConn
	logger   *zap.Logger
}

// Options configura o exportador de rastreamento
type Options struct {
	ServiceName   string
	Endpoint      string  // Endereço do coletor OTLP gRPC, ex: localhost:4317
	SamplingRatio float64 // Fração das requisições amostradas
}

// NewTracerProvider registra um provider global que exporta spans via OTLP gRPC.
// A conexão é estabelecida sob demanda; um coletor indisponível não impede a inicialização.
func NewTracerProvider(ctx context.Context, opts Options, logger *zap.Logger) (*TracerProvider, error) {
	if opts.SamplingRatio <= 0 || opts.SamplingRatio > 1 {
		opts.SamplingRatio = 0.1
	}

	conn, err := grpc.NewClient(opts.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("endereço do coletor OTLP inválido %q: %w", opts.Endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("falha ao criar exportador OTLP: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(os.Getenv("APP_VERSION")),
			attribute.String("environment", environment()),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("falha ao montar recurso de rastreamento: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SamplingRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Rastreamento OpenTelemetry habilitado",
		zap.String("endpoint", opts.Endpoint),
		zap.String("service", opts.ServiceName),
		zap.Float64("sampling_ratio", opts.SamplingRatio))

	return &TracerProvider{provider: tp, conn: conn, logger: logger}, nil
}

// Shutdown descarrega os spans pendentes e fecha a conexão com o coletor
func (tp *TracerProvider) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := tp.provider.Shutdown(ctx); err != nil {
		tp.logger.Error("Falha ao encerrar tracer provider", zap.Error(err))
	}
	if err := tp.conn.Close(); err != nil {
		tp.logger.Warn("Falha ao fechar conexão com o coletor", zap.Error(err))
	}
}

// Tracer retorna um tracer nomeado
func (tp *TracerProvider) Tracer(name string) trace.Tracer {
	return tp.provider.Tracer(name)
}

func environment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}
