package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/minshop/commerce/internal/catalog/app"
	"github.com/minshop/commerce/internal/catalog/domain"
)

const productColumns = `id, name, description, price, discount_price, discount_rate,
	stock_quantity, status, thumbnail_url, image_url, seller_id, created_at, updated_at`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	sellerUUID, err := uuid.Parse(p.SellerID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid seller id: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, description, price, discount_price, discount_rate,
			stock_quantity, status, thumbnail_url, image_url, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+productColumns,
		uuid.New(), p.Name, p.Description, p.Price,
		nullInt64(p.DiscountPrice), nullInt64(p.DiscountRate),
		p.StockQuantity, p.Status, p.ThumbnailURL, p.ImageURL, sellerUUID,
	)

	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND status <> 'deleted'`, prodID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, query string, limit, offset int) ([]domain.Product, int64, error) {
	where := `status <> 'deleted'`
	args := []any{}
	if query != "" {
		args = append(args, "%"+query+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}

	return out, total, rows.Err()
}

func (r *ProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	sets := []string{"updated_at = now()"}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.DiscountPrice != nil {
		add("discount_price", *patch.DiscountPrice)
	}
	if patch.DiscountRate != nil {
		add("discount_rate", *patch.DiscountRate)
	}
	if patch.StockQuantity != nil {
		add("stock_quantity", *patch.StockQuantity)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ThumbnailURL != nil {
		add("thumbnail_url", *patch.ThumbnailURL)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}

	args = append(args, prodID)
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns), args...)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p             domain.Product
		id, sellerID  uuid.UUID
		discountPrice sql.NullInt64
		discountRate  sql.NullInt64
	)

	err := row.Scan(&id, &p.Name, &p.Description, &p.Price, &discountPrice, &discountRate,
		&p.StockQuantity, &p.Status, &p.ThumbnailURL, &p.ImageURL, &sellerID,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}

	p.ID = id.String()
	p.SellerID = sellerID.String()
	if discountPrice.Valid {
		p.DiscountPrice = &discountPrice.Int64
	}
	if discountRate.Valid {
		p.DiscountRate = &discountRate.Int64
	}

	return p, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
