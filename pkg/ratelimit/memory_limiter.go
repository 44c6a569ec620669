package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryLimiter implementa rate limiting com janela fixa em memória.
// Adequado para uma única instância do servidor.
type MemoryLimiter struct {
	counters *cache.Cache
	now      func() time.Time
}

// NewMemoryLimiter cria um limitador em memória
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counters: cache.New(time.Minute, 5*time.Minute),
		now:      time.Now,
	}
}

// Allow incrementa o contador da janela atual e decide se a requisição é permitida
func (m *MemoryLimiter) Allow(ctx context.Context, config LimitConfig) (Result, error) {
	config, err := normalize(config)
	if err != nil {
		return Result{Allowed: true}, err
	}

	start, resetAfter := windowBounds(m.now(), config.Period)
	key := fmt.Sprintf("%s:%d", config.Key, start.UnixNano())

	// Add só cria o contador se ainda não existir nesta janela
	_ = m.counters.Add(key, 0, resetAfter+time.Second)
	count, err := m.counters.IncrementInt(key, 1)
	if err != nil {
		return Result{Allowed: true, Limit: config.Limit, Remaining: config.Limit, ResetAfter: resetAfter}, err
	}

	burstLimit := int(float64(config.Limit) * config.BurstFactor)
	return Result{
		Allowed:    count <= burstLimit,
		Limit:      config.Limit,
		Remaining:  remainingOf(config.Limit, count),
		ResetAfter: resetAfter,
	}, nil
}
