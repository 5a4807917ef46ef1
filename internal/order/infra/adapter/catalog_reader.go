package adapter

import (
	"context"
	"errors"
	"fmt"

	catalogapp "github.com/minshop/commerce/internal/catalog/app"
	orderapp "github.com/minshop/commerce/internal/order/app"
)

// CatalogServiceReader adapts the catalog service to the order workflow's
// read port, translating catalog errors into the order context's sentinels.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (orderapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return orderapp.Product{}, orderapp.ErrNotFound
	}
	if err != nil {
		return orderapp.Product{}, fmt.Errorf("catalog lookup: %w", err)
	}

	return orderapp.Product{
		ID:    p.ID,
		Name:  p.Name,
		Image: p.ThumbnailURL,
		Price: p.Price,
		Stock: p.StockQuantity,
	}, nil
}
