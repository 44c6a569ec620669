package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Incrementa o contador da janela e define sua expiração no primeiro acesso
var windowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local expireAt = tonumber(ARGV[2])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIREAT', key, expireAt)
	end

	return {count, limit - count}
`)

// RedisLimiter implementa rate limiting usando Redis, compartilhado entre réplicas
type RedisLimiter struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewRedisLimiter cria um novo limitador baseado em Redis
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("mockapi.ratelimit"),
		now:    time.Now,
	}
}

// Allow verifica se a requisição é permitida dentro do limite de taxa
func (r *RedisLimiter) Allow(ctx context.Context, config LimitConfig) (Result, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RedisLimiter.Allow",
		trace.WithAttributes(
			attribute.String("ratelimit.key", config.Key),
			attribute.Int("ratelimit.limit", config.Limit),
			attribute.Int64("ratelimit.period_ms", config.Period.Milliseconds()),
		),
	)
	defer span.End()

	config, err := normalize(config)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("error", true))
		return Result{Allowed: true}, err
	}

	if config.Period < time.Second {
		config.Period = time.Second // EXPIREAT tem resolução de segundos
	}
	start, resetAfter := windowBounds(r.now(), config.Period)
	key := fmt.Sprintf("mockapi:ratelimit:%s:%d", config.Key, start.Unix())
	expireAt := start.Add(config.Period).Unix()

	result, err := windowScript.Run(ctx, r.client, []string{key}, config.Limit, expireAt).Result()
	if err != nil {
		r.logger.Error("erro ao executar script de rate limit", zap.Error(err))
		span.SetStatus(codes.Error, "redis script error")
		span.SetAttributes(
			attribute.Bool("error", true),
			attribute.String("error.message", err.Error()),
		)
		// Falha aberta: o Redis indisponível não bloqueia o tráfego
		return Result{Allowed: true, Limit: config.Limit, Remaining: config.Limit, ResetAfter: resetAfter}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		r.logger.Error("resultado inesperado do script de rate limit", zap.Any("result", result))
		span.SetStatus(codes.Error, "unexpected result")
		return Result{Allowed: true, Limit: config.Limit, Remaining: config.Limit, ResetAfter: resetAfter},
			errors.New("resultado inválido do Redis")
	}

	count, _ := strconv.Atoi(fmt.Sprintf("%v", values[0]))
	burstLimit := int(float64(config.Limit) * config.BurstFactor)
	allowed := count <= burstLimit

	span.SetAttributes(
		attribute.Int("ratelimit.count", count),
		attribute.Int("ratelimit.burst_limit", burstLimit),
		attribute.Bool("ratelimit.allowed", allowed),
		attribute.Int64("ratelimit.reset_after_ms", resetAfter.Milliseconds()),
	)
	if !allowed {
		span.SetStatus(codes.Error, "rate limit exceeded")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return Result{
		Allowed:    allowed,
		Limit:      config.Limit,
		Remaining:  remainingOf(config.Limit, count),
		ResetAfter: resetAfter,
	}, nil
}
