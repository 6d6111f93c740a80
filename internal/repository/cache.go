package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farmacia/internal/domain"
)

// CachedCatalog кэширует карточки товаров (GetProduct) в Redis по схеме cache-aside.
// Листинг не кэшируется: загрузка каталога всегда отражает последний ответ API.
type CachedCatalog struct {
	next   ProductCatalog
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

var _ ProductCatalog = (*CachedCatalog)(nil)

func NewCachedCatalog(next ProductCatalog, client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *CachedCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedCatalog{next: next, client: client, prefix: prefix, ttl: ttl, log: log}
}

func (c *CachedCatalog) key(id string) string {
	return c.prefix + "product:" + id
}

func (c *CachedCatalog) ListProducts(ctx context.Context, limit int, token string) (domain.ProductPage, error) {
	return c.next.ListProducts(ctx, limit, token)
}

func (c *CachedCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := c.lookup(ctx, id); ok {
		return p, nil
	}
	p, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, p)
	return p, nil
}

func (c *CachedCatalog) CreateProduct(ctx context.Context, p domain.Product) (string, error) {
	id, err := c.next.CreateProduct(ctx, p)
	if err != nil {
		return "", err
	}
	c.invalidate(ctx, id)
	return id, nil
}

func (c *CachedCatalog) UpdateProduct(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	p, err := c.next.UpdateProduct(ctx, id, u)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return p, nil
}

func (c *CachedCatalog) DeleteProduct(ctx context.Context, id string) error {
	if err := c.next.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// Ping checks if the Redis connection is healthy.
func (c *CachedCatalog) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// lookup treats every cache failure as a miss.
func (c *CachedCatalog) lookup(ctx context.Context, id string) (*domain.Product, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", zap.String("product_id", id), zap.Error(err))
		}
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		c.log.Warn("cache unmarshal failed", zap.String("product_id", id), zap.Error(err))
		return nil, false
	}
	return &p, true
}

func (c *CachedCatalog) store(ctx context.Context, p *domain.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("cache marshal failed", zap.String("product_id", p.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(p.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("product_id", p.ID), zap.Error(fmt.Errorf("set %s: %w", c.key(p.ID), err)))
	}
}

func (c *CachedCatalog) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.log.Warn("cache delete failed", zap.String("product_id", id), zap.Error(err))
	}
}
