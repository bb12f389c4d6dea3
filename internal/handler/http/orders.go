package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/httputil"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
)

// OrderReader is the slice of the backend façade the order handlers need.
type OrderReader interface {
	GetOrders(ctx context.Context, userID string, params pagination.Params) ([]domain.Order, domain.PageInfo, error)
	GetOrderByID(ctx context.Context, userID, id string) (*domain.Order, error)
}

// OrderHandler handles HTTP requests for order browsing endpoints.
// Orders are read-only here; the backend owns all order mutation.
type OrderHandler struct {
	orders OrderReader
	logger *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders OrderReader, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// orderListing is the response shape for the order list.
type orderListing struct {
	Orders []domain.Order  `json:"orders"`
	Page   domain.PageInfo `json:"page"`
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	params := pagination.FromRequest(r)

	orders, page, err := h.orders.GetOrders(r.Context(), userID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orderListing{Orders: orders, Page: page}})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "order id is required"},
		})
		return
	}

	order, err := h.orders.GetOrderByID(r.Context(), userID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
