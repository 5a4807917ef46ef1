package app

import (
	"context"

	"github.com/minshop/commerce/internal/order/domain"
)

type ListFilter struct {
	Status *domain.OrderStatus
	Search string
	Limit  int
	Offset int
}

type OrderSummary struct {
	Order     domain.Order
	ItemCount int64
}

type OrderRepo interface {
	// CreateOrderTx persists the order, its items, and the matching stock
	// decrements as one transaction. It fails with InsufficientStockError when
	// a decrement would drive stock below zero.
	CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)

	// GetByIDAndUser loads an order, items included, scoped by owner.
	GetByIDAndUser(ctx context.Context, orderID, userID string) (domain.Order, error)

	// ListByUser returns one page of the user's orders, newest first, plus the
	// unpaginated total.
	ListByUser(ctx context.Context, userID string, f ListFilter) ([]OrderSummary, int64, error)

	// CancelOrderTx persists the cancellation and restores stock for every
	// line item as one transaction.
	CancelOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
}

type Product struct {
	ID    string
	Name  string
	Image string
	Price int64
	Stock int64
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type UserStore interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type EventPublisher interface {
	OrderCreated(ctx context.Context, order domain.Order) error
	OrderCancelled(ctx context.Context, order domain.Order) error
}
