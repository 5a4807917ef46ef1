package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusSoldOut  ProductStatus = "sold_out"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusDeleted  ProductStatus = "deleted"
)

type Product struct {
	ID            string
	Name          string
	Description   string
	Price         int64
	DiscountPrice *int64
	DiscountRate  *int64 // percent, 0..100
	StockQuantity int64
	Status        ProductStatus
	ThumbnailURL  string
	ImageURL      string
	SellerID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FinalPrice is the effective sale price. A directly set discount price wins
// over a discount rate; with neither, it is the base price.
func (p Product) FinalPrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}

	if p.DiscountRate != nil {
		price := decimal.NewFromInt(p.Price)
		factor := decimal.NewFromInt(100 - *p.DiscountRate).Div(decimal.NewFromInt(100))
		return price.Mul(factor).Round(0).IntPart()
	}

	return p.Price
}
