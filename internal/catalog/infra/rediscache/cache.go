package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/minshop/commerce/internal/catalog/app"
	"github.com/minshop/commerce/internal/catalog/domain"
)

const DefaultTTL = 5 * time.Minute

// ProductCache is a cache-aside decorator over a ProductRepo. Only Get is
// cached; writes go straight through and invalidate the cached entry. Cache
// failures degrade to the underlying repo.
type ProductCache struct {
	next   app.ProductRepo
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	log    *slog.Logger
}

func NewProductCache(next app.ProductRepo, client *redis.Client, ttl time.Duration, log *slog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{next: next, client: client, ttl: ttl, log: log}
}

func key(id string) string {
	return "catalog:product:" + id
}

func (c *ProductCache) Get(ctx context.Context, id string) (domain.Product, error) {
	raw, err := c.client.Get(ctx, key(id)).Result()
	if err == nil {
		var p domain.Product
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return p, nil
		}
		// unreadable entry, fall through to the repo
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("product cache read failed", slog.String("id", id), slog.Any("err", err))
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		p, err := c.next.Get(ctx, id)
		if err != nil {
			return domain.Product{}, err
		}

		body, err := json.Marshal(p)
		if err != nil {
			return domain.Product{}, fmt.Errorf("marshal product: %w", err)
		}
		if err := c.client.Set(ctx, key(id), body, c.ttl).Err(); err != nil {
			c.log.Warn("product cache write failed", slog.String("id", id), slog.Any("err", err))
		}

		return p, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return v.(domain.Product), nil
}

func (c *ProductCache) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return c.next.Create(ctx, p)
}

func (c *ProductCache) List(ctx context.Context, query string, limit, offset int) ([]domain.Product, int64, error) {
	return c.next.List(ctx, query, limit, offset)
}

func (c *ProductCache) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	p, err := c.next.Update(ctx, id, patch)
	if err != nil {
		return domain.Product{}, err
	}

	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		c.log.Warn("product cache invalidation failed", slog.String("id", id), slog.Any("err", err))
	}

	return p, nil
}
