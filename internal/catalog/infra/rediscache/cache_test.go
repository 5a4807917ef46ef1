package rediscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/minshop/commerce/internal/catalog/app"
	"github.com/minshop/commerce/internal/catalog/domain"
)

type fakeRepo struct {
	product domain.Product
	gets    int
}

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return p, nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	f.gets++
	if id != f.product.ID {
		return domain.Product{}, app.ErrNotFound
	}
	return f.product, nil
}

func (f *fakeRepo) List(ctx context.Context, query string, limit, offset int) ([]domain.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	patch.Apply(&f.product)
	return f.product, nil
}

func TestGetCacheMissFillsCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := &fakeRepo{product: domain.Product{ID: "p1", Name: "Keyboard", Price: 1000}}
	cache := NewProductCache(repo, db, time.Minute, slog.Default())

	body, _ := json.Marshal(repo.product)
	mock.ExpectGet("catalog:product:p1").RedisNil()
	mock.ExpectSet("catalog:product:p1", body, time.Minute).SetVal("OK")

	p, err := cache.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Keyboard" || repo.gets != 1 {
		t.Fatalf("expected repo hit, got product=%+v gets=%d", p, repo.gets)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetCacheHitSkipsRepo(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := &fakeRepo{product: domain.Product{ID: "p1", Name: "Keyboard", Price: 1000}}
	cache := NewProductCache(repo, db, time.Minute, slog.Default())

	body, _ := json.Marshal(repo.product)
	mock.ExpectGet("catalog:product:p1").SetVal(string(body))

	p, err := cache.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Price != 1000 || repo.gets != 0 {
		t.Fatalf("expected cache hit without repo call, gets=%d", repo.gets)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateInvalidates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := &fakeRepo{product: domain.Product{ID: "p1", Name: "Keyboard", Price: 1000}}
	cache := NewProductCache(repo, db, time.Minute, slog.Default())

	mock.ExpectDel("catalog:product:p1").SetVal(1)

	name := "Mouse"
	if _, err := cache.Update(context.Background(), "p1", domain.ProductPatch{Name: &name}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
