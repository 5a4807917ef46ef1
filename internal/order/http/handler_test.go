package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/minshop/commerce/internal/auth"
	"github.com/minshop/commerce/internal/order/app"
	"github.com/minshop/commerce/internal/order/domain"
)

// scripted fakes: each test decides what the ports return.

type fakeOrders struct {
	order domain.Order
	err   error
	page  []app.OrderSummary
	total int64
}

func (f *fakeOrders) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	order.ID = f.order.ID
	return order, nil
}

func (f *fakeOrders) GetByIDAndUser(ctx context.Context, orderID, userID string) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	if orderID != f.order.ID || userID != f.order.UserID {
		return domain.Order{}, app.ErrNotFound
	}
	return f.order, nil
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID string, filter app.ListFilter) ([]app.OrderSummary, int64, error) {
	return f.page, f.total, f.err
}

func (f *fakeOrders) CancelOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	return order, f.err
}

type fakeCatalog struct {
	product app.Product
	err     error
}

func (f *fakeCatalog) GetProduct(ctx context.Context, productID string) (app.Product, error) {
	if f.err != nil {
		return app.Product{}, f.err
	}
	return f.product, nil
}

type fakeUsers struct{ exists bool }

func (f *fakeUsers) Exists(ctx context.Context, userID string) (bool, error) {
	return f.exists, nil
}

type nopEvents struct{}

func (nopEvents) OrderCreated(ctx context.Context, order domain.Order) error   { return nil }
func (nopEvents) OrderCancelled(ctx context.Context, order domain.Order) error { return nil }

func newServer(orders *fakeOrders, catalog *fakeCatalog, users *fakeUsers) http.Handler {
	svc := app.NewService(orders, catalog, users, nopEvents{}, slog.Default())
	mux := http.NewServeMux()
	NewHandler(svc).Register(mux)
	return auth.Middleware(mux)
}

func do(t *testing.T, h http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(auth.Header, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestCreateOrderHTTP(t *testing.T) {
	userID := uuid.NewString()
	productID := uuid.NewString()

	t.Run("success -> 200 projection", func(t *testing.T) {
		h := newServer(
			&fakeOrders{order: domain.Order{ID: uuid.NewString()}},
			&fakeCatalog{product: app.Product{ID: productID, Name: "Keyboard", Price: 30000, Stock: 10}},
			&fakeUsers{exists: true},
		)

		body := fmt.Sprintf(`{"items":[{"productId":%q,"quantity":2}],"paymentMethod":"card"}`, productID)
		rec := do(t, h, http.MethodPost, "/orders", userID, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "PENDING" || resp.TotalAmount != 60000 {
			t.Fatalf("unexpected projection: %+v", resp)
		}
		if len(resp.Items) != 1 || resp.Items[0].Price != 30000 {
			t.Fatalf("unexpected items: %+v", resp.Items)
		}
	})

	t.Run("insufficient stock -> 400 with count", func(t *testing.T) {
		h := newServer(
			&fakeOrders{},
			&fakeCatalog{product: app.Product{ID: productID, Name: "Keyboard", Price: 30000, Stock: 1}},
			&fakeUsers{exists: true},
		)

		body := fmt.Sprintf(`{"items":[{"productId":%q,"quantity":2}]}`, productID)
		rec := do(t, h, http.MethodPost, "/orders", userID, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		raw := rec.Body.String()
		if !strings.Contains(raw, "current stock: 1") {
			t.Fatalf("expected stock count in message, got %s", raw)
		}
	})

	t.Run("unknown user -> 404", func(t *testing.T) {
		h := newServer(
			&fakeOrders{},
			&fakeCatalog{product: app.Product{ID: productID, Price: 30000, Stock: 10}},
			&fakeUsers{exists: false},
		)

		body := fmt.Sprintf(`{"items":[{"productId":%q,"quantity":1}]}`, productID)
		rec := do(t, h, http.MethodPost, "/orders", userID, body)
		if rec.Code != http.StatusNotFound || errCode(t, rec) != "NOT_FOUND" {
			t.Fatalf("expected 404 NOT_FOUND, got %d", rec.Code)
		}
	})

	t.Run("malformed body -> 400", func(t *testing.T) {
		h := newServer(&fakeOrders{}, &fakeCatalog{}, &fakeUsers{exists: true})
		rec := do(t, h, http.MethodPost, "/orders", userID, "{not json")
		if rec.Code != http.StatusBadRequest || errCode(t, rec) != "INVALID_ARGUMENT" {
			t.Fatalf("expected 400 INVALID_ARGUMENT, got %d", rec.Code)
		}
	})

	t.Run("no identity -> 401", func(t *testing.T) {
		h := newServer(&fakeOrders{}, &fakeCatalog{}, &fakeUsers{exists: true})
		rec := do(t, h, http.MethodPost, "/orders", "", `{"items":[]}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestGetOrderHTTP(t *testing.T) {
	owner := uuid.NewString()
	orderID := uuid.NewString()

	h := newServer(
		&fakeOrders{order: domain.Order{ID: orderID, UserID: owner, Status: domain.OrderStatusPending}},
		&fakeCatalog{},
		&fakeUsers{exists: true},
	)

	t.Run("owner -> 200", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/orders/"+orderID, owner, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("other user -> 404, not 403", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/orders/"+orderID, uuid.NewString(), "")
		if rec.Code != http.StatusNotFound || errCode(t, rec) != "NOT_FOUND" {
			t.Fatalf("expected 404 NOT_FOUND, got %d", rec.Code)
		}
	})
}

func TestCancelOrderHTTP(t *testing.T) {
	owner := uuid.NewString()
	orderID := uuid.NewString()

	t.Run("shipped -> 400 INVALID_STATE", func(t *testing.T) {
		h := newServer(
			&fakeOrders{order: domain.Order{ID: orderID, UserID: owner, Status: domain.OrderStatusShipped}},
			&fakeCatalog{},
			&fakeUsers{exists: true},
		)

		rec := do(t, h, http.MethodPost, "/orders/"+orderID+"/cancel", owner, `{"reason":"too slow"}`)
		if rec.Code != http.StatusBadRequest || errCode(t, rec) != "INVALID_STATE" {
			t.Fatalf("expected 400 INVALID_STATE, got %d: %s", rec.Code, rec.Body)
		}
	})

	t.Run("pending -> 200 cancelled projection", func(t *testing.T) {
		h := newServer(
			&fakeOrders{order: domain.Order{ID: orderID, UserID: owner, Status: domain.OrderStatusPending}},
			&fakeCatalog{},
			&fakeUsers{exists: true},
		)

		rec := do(t, h, http.MethodPost, "/orders/"+orderID+"/cancel", owner, `{"reason":"too slow"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}

		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "CANCELLED" || resp.CancelledAt == nil {
			t.Fatalf("expected cancelled projection, got %+v", resp)
		}
	})
}

func TestListOrdersHTTP(t *testing.T) {
	userID := uuid.NewString()

	h := newServer(
		&fakeOrders{
			page: []app.OrderSummary{
				{Order: domain.Order{ID: uuid.NewString(), OrderNumber: "ORD-250601-0001", Status: domain.OrderStatusPending, TotalAmount: 60000}, ItemCount: 2},
			},
			total: 25,
		},
		&fakeCatalog{},
		&fakeUsers{exists: true},
	)

	rec := do(t, h, http.MethodGet, "/orders?page=2&limit=10", userID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp orderPageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 25 || resp.TotalPages != 3 || resp.Page != 2 || resp.Limit != 10 {
		t.Fatalf("unexpected page math: %+v", resp)
	}
	if len(resp.Items) != 1 || resp.Items[0].ItemCount != 2 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}
