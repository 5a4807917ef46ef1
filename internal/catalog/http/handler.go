package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/minshop/commerce/internal/auth"
	"github.com/minshop/commerce/internal/catalog/app"
	"github.com/minshop/commerce/internal/catalog/domain"
	"github.com/minshop/commerce/pkg/httpx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("PATCH /products/{id}", h.updateProduct)
}

type createProductRequest struct {
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Price         int64                 `json:"price"`
	DiscountPrice *int64                `json:"discountPrice,omitempty"`
	DiscountRate  *int64                `json:"discountRate,omitempty"`
	StockQuantity int64                 `json:"stockQuantity"`
	Status        *domain.ProductStatus `json:"status,omitempty"`
	ThumbnailURL  string                `json:"thumbnailUrl,omitempty"`
	ImageURL      string                `json:"imageUrl,omitempty"`
}

type updateProductRequest struct {
	Name          *string               `json:"name"`
	Description   *string               `json:"description"`
	Price         *int64                `json:"price"`
	DiscountPrice *int64                `json:"discountPrice"`
	DiscountRate  *int64                `json:"discountRate"`
	StockQuantity *int64                `json:"stockQuantity"`
	Status        *domain.ProductStatus `json:"status"`
	ThumbnailURL  *string               `json:"thumbnailUrl"`
	ImageURL      *string               `json:"imageUrl"`
}

type productResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discountPrice,omitempty"`
	DiscountRate  *int64    `json:"discountRate,omitempty"`
	FinalPrice    int64     `json:"finalPrice"`
	StockQuantity int64     `json:"stockQuantity"`
	Status        string    `json:"status"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	SellerID      string    `json:"sellerId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type productPageResponse struct {
	Items      []productResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int64             `json:"totalPages"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	in := app.CreateProductRequest{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		DiscountRate:  req.DiscountRate,
		StockQuantity: req.StockQuantity,
		ThumbnailURL:  req.ThumbnailURL,
		ImageURL:      req.ImageURL,
		SellerID:      auth.UserID(r.Context()),
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListProducts(r.Context(), q.Get("search"), intQuery(q.Get("page")), intQuery(q.Get("limit")))
	if err != nil {
		writeErr(w, err)
		return
	}

	items := make([]productResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toResponse(p))
	}

	httpx.WriteJSON(w, http.StatusOK, productPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	p, err := h.svc.UpdateProduct(r.Context(), r.PathValue("id"), domain.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		DiscountRate:  req.DiscountRate,
		StockQuantity: req.StockQuantity,
		Status:        req.Status,
		ThumbnailURL:  req.ThumbnailURL,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(p))
}

func toResponse(p domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		DiscountRate:  p.DiscountRate,
		FinalPrice:    p.FinalPrice(),
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		ThumbnailURL:  p.ThumbnailURL,
		ImageURL:      p.ImageURL,
		SellerID:      p.SellerID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
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
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, app.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
