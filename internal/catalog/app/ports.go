package app

import (
	"context"

	"github.com/minshop/commerce/internal/catalog/domain"
)

type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, query string, limit, offset int) ([]domain.Product, int64, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
}
