package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diillson/mock-api-server/internal/infra/metrics"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// scanBatch é o número de chaves pedidas por SCAN e removidas por DEL em Clear
const scanBatch = 100

// RedisCache implementa Cache sobre Redis.
// Permite que várias réplicas do servidor compartilhem o cache de despacho.
type RedisCache struct {
	client  *redis.Client
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.MockMetrics
}

// NewRedisCache cria uma nova instância de RedisCache sobre um cliente já conectado
func NewRedisCache(client *redis.Client, m *metrics.MockMetrics, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client:  client,
		logger:  logger,
		tracer:  otel.GetTracerProvider().Tracer("mockapi.cache.redis"),
		metrics: m,
	}
}

// NewRedisClientWithConfig cria um cliente Redis e verifica a conexão
func NewRedisClientWithConfig(ctx context.Context, opts *redis.Options, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("falha ao conectar ao Redis em %s: %w", opts.Addr, err)
	}

	logger.Info("Conexão com Redis estabelecida",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB))
	return client, nil
}

// start abre um span para a operação; done encerra o span registrando err
func (c *RedisCache) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	attrs = append(attrs, attribute.String("cache.operation", op))
	ctx, span := c.tracer.Start(ctx, "RedisCache."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Warn("Operação no Redis falhou", zap.String("operation", op), zap.Error(err))
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// Set armazena o valor serializado em JSON
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) (err error) {
	ctx, done := c.start(ctx, "Set", attribute.String("cache.key", key))
	defer func() { done(err) }()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("falha ao serializar valor do cache: %w", err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get recupera um valor; ausência da chave não é erro
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (found bool, err error) {
	ctx, done := c.start(ctx, "Get", attribute.String("cache.key", key))
	defer func() { done(err) }()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheLookup(false)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("falha ao deserializar valor do cache: %w", err)
	}

	c.metrics.CacheLookup(true)
	return true, nil
}

// Delete remove um valor do cache
func (c *RedisCache) Delete(ctx context.Context, key string) (err error) {
	ctx, done := c.start(ctx, "Delete", attribute.String("cache.key", key))
	defer func() { done(err) }()

	return c.client.Del(ctx, key).Err()
}

// Clear remove, em lotes, todas as chaves com KeyPrefix
func (c *RedisCache) Clear(ctx context.Context) (err error) {
	pattern := KeyPrefix + "*"
	ctx, done := c.start(ctx, "Clear", attribute.String("cache.pattern", pattern))
	defer func() { done(err) }()

	var removed int64
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for {
		more := iter.Next(ctx)
		if more {
			batch = append(batch, iter.Val())
		}
		if len(batch) > 0 && (len(batch) == scanBatch || !more) {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return err
			}
			removed += n
			batch = batch[:0]
		}
		if !more {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("cache.keys_removed", removed))
	return nil
}

// Ping verifica se o Redis está acessível
func (c *RedisCache) Ping(ctx context.Context) (err error) {
	ctx, done := c.start(ctx, "Ping")
	defer func() { done(err) }()

	return c.client.Ping(ctx).Err()
}
