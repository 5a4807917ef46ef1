package app

import (
	"context"
	"errors"
	"strings"

	"github.com/minshop/commerce/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type CreateProductRequest struct {
	Name          string
	Description   string
	Price         int64
	DiscountPrice *int64
	DiscountRate  *int64
	StockQuantity int64
	Status        domain.ProductStatus
	ThumbnailURL  string
	ImageURL      string
	SellerID      string
}

type ProductPage struct {
	Items      []domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int64
}

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" || req.Price <= 0 || req.StockQuantity < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	if req.DiscountRate != nil && (*req.DiscountRate < 0 || *req.DiscountRate > 100) {
		return domain.Product{}, ErrInvalidInput
	}
	if req.DiscountPrice != nil && *req.DiscountPrice < 0 {
		return domain.Product{}, ErrInvalidInput
	}

	status := req.Status
	if status == "" {
		status = domain.ProductStatusPending
	}

	p := domain.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		DiscountRate:  req.DiscountRate,
		StockQuantity: req.StockQuantity,
		Status:        status,
		ThumbnailURL:  req.ThumbnailURL,
		ImageURL:      req.ImageURL,
		SellerID:      req.SellerID,
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, page, limit int) (ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	items, total, err := s.repo.List(ctx, strings.TrimSpace(query), limit, (page-1)*limit)
	if err != nil {
		return ProductPage{}, err
	}

	return ProductPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if strings.TrimSpace(id) == "" || patch.Empty() {
		return domain.Product{}, ErrInvalidInput
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return domain.Product{}, ErrInvalidInput
	}
	if patch.DiscountRate != nil && (*patch.DiscountRate < 0 || *patch.DiscountRate > 100) {
		return domain.Product{}, ErrInvalidInput
	}
	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		return domain.Product{}, ErrInvalidInput
	}

	return s.repo.Update(ctx, id, patch)
}
