package domain

// ProductPatch is a partial update. A nil field is left unchanged; a non-nil
// field is written, even when it points at a zero value.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *int64
	DiscountPrice *int64
	DiscountRate  *int64
	StockQuantity *int64
	Status        *ProductStatus
	ThumbnailURL  *string
	ImageURL      *string
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Price == nil &&
		p.DiscountPrice == nil &&
		p.DiscountRate == nil &&
		p.StockQuantity == nil &&
		p.Status == nil &&
		p.ThumbnailURL == nil &&
		p.ImageURL == nil
}

// Apply writes the set fields onto the product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.DiscountPrice != nil {
		product.DiscountPrice = p.DiscountPrice
	}
	if p.DiscountRate != nil {
		product.DiscountRate = p.DiscountRate
	}
	if p.StockQuantity != nil {
		product.StockQuantity = *p.StockQuantity
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
	if p.ThumbnailURL != nil {
		product.ThumbnailURL = *p.ThumbnailURL
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
}
