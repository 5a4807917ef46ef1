package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minshop/commerce/internal/order/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type CreateOrderItem struct {
	ProductID  string
	Quantity   int32
	Attributes string
}

type CreateOrderRequest struct {
	Items           []CreateOrderItem
	ShippingAddress string
	Notes           string
	PaymentMethod   string
}

type ListOrdersRequest struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type OrderPage struct {
	Items      []OrderSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int64
}

type Service struct {
	orders  OrderRepo
	catalog CatalogReader
	users   UserStore
	events  EventPublisher
	log     *slog.Logger

	now func() time.Time
}

func NewService(orders OrderRepo, catalog CatalogReader, users UserStore, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		orders:  orders,
		catalog: catalog,
		users:   users,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: order needs at least one item", ErrInvalidInput)
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return domain.Order{}, fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidInput, i)
		}
	}

	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	var totalAmount int64

	for _, reqItem := range req.Items {
		product, err := s.catalog.GetProduct(ctx, reqItem.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("product %s: %w", reqItem.ProductID, err)
		}

		if product.Stock < int64(reqItem.Quantity) {
			return domain.Order{}, &domain.InsufficientStockError{
				ProductName: product.Name,
				Stock:       product.Stock,
			}
		}

		// Snapshots carry the base price; discounts are display-only.
		lineTotal := product.Price * int64(reqItem.Quantity)
		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.Image,
			Quantity:     reqItem.Quantity,
			Price:        product.Price,
			TotalPrice:   lineTotal,
			Attributes:   reqItem.Attributes,
		})
		totalAmount += lineTotal
	}

	order := domain.Order{
		UserID:          userID,
		OrderNumber:     domain.NewOrderNumber(s.now()),
		Status:          domain.OrderStatusPending,
		Items:           items,
		TotalAmount:     totalAmount,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
	}

	created, err := s.orders.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.events.OrderCreated(ctx, created); err != nil {
		s.log.Warn("order created event publish failed",
			slog.String("order_id", created.ID), slog.Any("err", err))
	}

	return created, nil
}

func (s *Service) GetOrdersByUser(ctx context.Context, userID string, req ListOrdersRequest) (OrderPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}

	filter := ListFilter{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	}
	if req.Status != "" {
		status := domain.OrderStatus(req.Status)
		if !status.Valid() {
			return OrderPage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
		}
		filter.Status = &status
	}

	summaries, total, err := s.orders.ListByUser(ctx, userID, filter)
	if err != nil {
		return OrderPage{}, err
	}

	return OrderPage{
		Items:      summaries,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: (total + int64(req.Limit) - 1) / int64(req.Limit),
	}, nil
}

func (s *Service) GetOrderDetail(ctx context.Context, orderID, userID string) (domain.Order, error) {
	return s.orders.GetByIDAndUser(ctx, orderID, userID)
}

func (s *Service) CancelOrder(ctx context.Context, orderID, userID, reason string) (domain.Order, error) {
	order, err := s.orders.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := order.Cancel(reason, s.now()); err != nil {
		return domain.Order{}, err
	}

	cancelled, err := s.orders.CancelOrderTx(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.events.OrderCancelled(ctx, cancelled); err != nil {
		s.log.Warn("order cancelled event publish failed",
			slog.String("order_id", cancelled.ID), slog.Any("err", err))
	}

	return cancelled, nil
}
