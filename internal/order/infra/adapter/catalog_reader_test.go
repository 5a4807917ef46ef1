package adapter

import (
	"context"
	"errors"
	"testing"

	catalogapp "github.com/minshop/commerce/internal/catalog/app"
	catalogdomain "github.com/minshop/commerce/internal/catalog/domain"
	orderapp "github.com/minshop/commerce/internal/order/app"
)

type fakeProductRepo struct {
	product catalogdomain.Product
}

func (f fakeProductRepo) Create(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	return p, nil
}

func (f fakeProductRepo) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	if id != f.product.ID {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return f.product, nil
}

func (f fakeProductRepo) List(ctx context.Context, query string, limit, offset int) ([]catalogdomain.Product, int64, error) {
	return nil, 0, nil
}

func (f fakeProductRepo) Update(ctx context.Context, id string, patch catalogdomain.ProductPatch) (catalogdomain.Product, error) {
	return catalogdomain.Product{}, nil
}

func TestGetProductMapsBasePrice(t *testing.T) {
	discount := int64(20000)
	repo := fakeProductRepo{product: catalogdomain.Product{
		ID:            "2b1c0f9a-0000-4000-8000-000000000001",
		Name:          "Keyboard",
		Price:         30000,
		DiscountPrice: &discount,
		StockQuantity: 7,
		ThumbnailURL:  "kb.jpg",
	}}
	reader := NewCatalogServiceReader(catalogapp.NewService(repo))

	p, err := reader.GetProduct(context.Background(), repo.product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Order snapshots take the base price even when a discount exists.
	if p.Price != 30000 {
		t.Fatalf("expected base price 30000, got %d", p.Price)
	}
	if p.Stock != 7 || p.Name != "Keyboard" || p.Image != "kb.jpg" {
		t.Fatalf("unexpected mapping: %+v", p)
	}
}

func TestGetProductNotFound(t *testing.T) {
	reader := NewCatalogServiceReader(catalogapp.NewService(fakeProductRepo{}))

	_, err := reader.GetProduct(context.Background(), "2b1c0f9a-0000-4000-8000-000000000002")
	if !errors.Is(err, orderapp.ErrNotFound) {
		t.Fatalf("expected order context ErrNotFound, got %v", err)
	}
}
