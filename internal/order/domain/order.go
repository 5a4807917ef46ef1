package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

var ErrInvalidState = errors.New("invalid order state")

// InsufficientStockError carries the current stock so callers can show it.
type InsufficientStockError struct {
	ProductName string
	Stock       int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s, current stock: %d", e.ProductName, e.Stock)
}

type Order struct {
	ID              string
	UserID          string
	OrderNumber     string
	Status          OrderStatus
	Items           []OrderItem
	TotalAmount     int64
	PaymentMethod   string
	PaymentID       string
	ShippingAddress string
	ShippingCode    string
	Notes           string
	CancelReason    string
	RefundReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	RefundedAt      *time.Time
}

// OrderItem snapshots the product at order time. Price and name never change
// afterwards, even when the product does.
type OrderItem struct {
	ID           string
	OrderID      string
	ProductID    string
	ProductName  string
	ProductImage string
	Quantity     int32
	Price        int64
	TotalPrice   int64
	Attributes   string
}

// Cancel moves the order to CANCELLED when the current status allows it.
// Shipped and delivered orders are past the point of no return; cancelled and
// refunded orders stay as they are.
func (o *Order) Cancel(reason string, at time.Time) error {
	switch o.Status {
	case OrderStatusShipped, OrderStatusDelivered:
		return fmt.Errorf("%w: order already shipped or delivered", ErrInvalidState)
	case OrderStatusCancelled, OrderStatusRefunded:
		return fmt.Errorf("%w: order already cancelled", ErrInvalidState)
	}

	o.Status = OrderStatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &at
	return nil
}

// NewOrderNumber builds the human-facing order identifier:
// ORD-{YYMMDD}-{0000..9999}. The random suffix is not checked for uniqueness.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("060102"), rand.IntN(10000))
}
