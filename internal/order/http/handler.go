package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/minshop/commerce/internal/auth"
	"github.com/minshop/commerce/internal/order/app"
	"github.com/minshop/commerce/internal/order/domain"
	"github.com/minshop/commerce/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("POST /orders/{id}/cancel", h.cancelOrder)
}

type createOrderItemRequest struct {
	ProductID  string `json:"productId"`
	Quantity   int32  `json:"quantity"`
	Attributes string `json:"attributes,omitempty"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items"`
	ShippingAddress string                   `json:"shippingAddress,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	PaymentMethod   string                   `json:"paymentMethod,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

type orderItemResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int32  `json:"quantity"`
	Price        int64  `json:"price"`
	TotalPrice   int64  `json:"totalPrice"`
	Attributes   string `json:"attributes,omitempty"`
	ProductImage string `json:"productImage,omitempty"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          string              `json:"userId"`
	Status          string              `json:"status"`
	Items           []orderItemResponse `json:"items"`
	TotalAmount     int64               `json:"totalAmount"`
	PaymentMethod   string              `json:"paymentMethod,omitempty"`
	PaymentID       string              `json:"paymentId,omitempty"`
	ShippingAddress string              `json:"shippingAddress,omitempty"`
	ShippingCode    string              `json:"shippingCode,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	ShippedAt       *time.Time          `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	RefundedAt      *time.Time          `json:"refundedAt,omitempty"`
}

type orderSummaryResponse struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"totalAmount"`
	ItemCount   int64     `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type orderPageResponse struct {
	Items      []orderSummaryResponse `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int64                  `json:"totalPages"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	items := make([]app.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, app.CreateOrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Attributes: item.Attributes,
		})
	}

	order, err := h.svc.CreateOrder(r.Context(), auth.UserID(r.Context()), app.CreateOrderRequest{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.GetOrdersByUser(r.Context(), auth.UserID(r.Context()), app.ListOrdersRequest{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   intQuery(q.Get("page")),
		Limit:  intQuery(q.Get("limit")),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	items := make([]orderSummaryResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, orderSummaryResponse{
			ID:          s.Order.ID,
			OrderNumber: s.Order.OrderNumber,
			Status:      string(s.Order.Status),
			TotalAmount: s.Order.TotalAmount,
			ItemCount:   s.ItemCount,
			CreatedAt:   s.Order.CreatedAt,
			UpdatedAt:   s.Order.UpdatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, orderPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrderDetail(r.Context(), r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(order))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
			return
		}
	}

	order, err := h.svc.CancelOrder(r.Context(), r.PathValue("id"), auth.UserID(r.Context()), req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(order))
}

func toResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			Price:        item.Price,
			TotalPrice:   item.TotalPrice,
			Attributes:   item.Attributes,
			ProductImage: item.ProductImage,
		})
	}

	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		Items:           items,
		TotalAmount:     o.TotalAmount,
		PaymentMethod:   o.PaymentMethod,
		PaymentID:       o.PaymentID,
		ShippingAddress: o.ShippingAddress,
		ShippingCode:    o.ShippingCode,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		RefundedAt:      o.RefundedAt,
	}
}

func intQuery(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func writeErr(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", stockErr.Error())
	case errors.Is(err, domain.ErrInvalidState):
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_STATE", err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, app.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
