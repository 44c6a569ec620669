package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/mock-api-server/internal/infra/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// MemoryCache implementa Cache em memória sobre go-cache.
// Valores são guardados serializados em JSON, com a mesma semântica do RedisCache.
type MemoryCache struct {
	items   *gocache.Cache
	logger  *zap.Logger
	metrics *metrics.MockMetrics
}

// NewMemoryCache cria uma nova instância de MemoryCache
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration, m *metrics.MockMetrics, logger *zap.Logger) *MemoryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryCache{
		items:   gocache.New(defaultExpiration, cleanupInterval),
		logger:  logger,
		metrics: m,
	}
}

// Set armazena uma cópia serializada do valor
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("falha ao serializar valor do cache: %w", err)
	}
	c.items.Set(key, data, expiration)
	return nil
}

// Get recupera um valor; ausência da chave não é erro
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, found := c.items.Get(key)
	c.metrics.CacheLookup(found)
	if !found {
		return false, nil
	}

	if err := json.Unmarshal(raw.([]byte), dest); err != nil {
		c.logger.Warn("Valor do cache incompatível com o destino", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("falha ao deserializar valor do cache: %w", err)
	}
	return true, nil
}

// Delete remove um valor do cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Clear remove todas as chaves com KeyPrefix
func (c *MemoryCache) Clear(ctx context.Context) error {
	for key := range c.items.Items() {
		if strings.HasPrefix(key, KeyPrefix) {
			c.items.Delete(key)
		}
	}
	return nil
}

// ItemCount retorna o número de itens armazenados, incluindo expirados ainda não coletados
func (c *MemoryCache) ItemCount() int {
	return c.items.ItemCount()
}

// Ping sempre sucede
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}
