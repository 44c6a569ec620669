package ratelimit

import (
	"context"
	"errors"
	"time"
)

// LimitConfig configura o comportamento do limitador
type LimitConfig struct {
	Key         string        // Chave única para identificar o limite
	Limit       int           // Número máximo de requisições
	Period      time.Duration // Período de tempo para o limite
	BurstFactor float64       // Fator para permitir rajadas (1.0 = sem rajada)
}

// Result descreve a decisão do limitador
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Limiter decide se uma requisição cabe no limite configurado
type Limiter interface {
	Allow(ctx context.Context, config LimitConfig) (Result, error)
}

func normalize(config LimitConfig) (LimitConfig, error) {
	if config.Limit <= 0 {
		return config, errors.New("limite deve ser maior que zero")
	}
	if config.Period <= 0 {
		return config, errors.New("período deve ser maior que zero")
	}
	if config.BurstFactor <= 0 {
		config.BurstFactor = 1.0 // Default sem rajada
	}
	return config, nil
}

// windowBounds alinha a janela fixa atual ao período
func windowBounds(now time.Time, period time.Duration) (start time.Time, resetAfter time.Duration) {
	start = now.Truncate(period)
	return start, start.Add(period).Sub(now)
}

func remainingOf(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
