package cache

import (
	"context"
	"time"
)

// NoOpCache é usado quando o cache está desabilitado na configuração.
// Toda leitura é um miss, então o despacho sempre percorre o registro.
type NoOpCache struct{}

// NewNoOpCache cria um cache que descarta tudo
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (c *NoOpCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Ping(ctx context.Context) error {
	return nil
}
