package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/StorefrontGo/internal/catalog"
	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/httputil"
	"github.com/utafrali/StorefrontGo/pkg/money"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
)

// CatalogHandler handles HTTP requests for product browsing endpoints.
type CatalogHandler struct {
	service *catalog.Service
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *catalog.Service, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	filter := filterFromQuery(r)
	sortKey := r.URL.Query().Get("sort")
	params := pagination.FromRequest(r)

	listing, err := h.service.ListProducts(r.Context(), userID, filter, sortKey, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id is required"},
		})
		return
	}

	detail, err := h.service.GetProductDetail(r.Context(), userID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.GetCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cats})
}

// filterFromQuery builds the product filter from query parameters.
// Numeric parameters go through the standard coercion: an unparseable
// value is treated as absent rather than failing the request.
func filterFromQuery(r *http.Request) domain.Filter {
	q := r.URL.Query()

	filter := domain.Filter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		InStock:  q.Get("in_stock") == "true",
	}

	if tags := strings.TrimSpace(q.Get("tags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				filter.Tags = append(filter.Tags, trimmed)
			}
		}
	}

	if v, ok := money.Coerce(q.Get("min_price")); ok {
		filter.MinPrice = &v
	}
	if v, ok := money.Coerce(q.Get("max_price")); ok {
		filter.MaxPrice = &v
	}
	if v, ok := money.Coerce(q.Get("min_rating")); ok {
		filter.MinRating = &v
	}

	return filter
}
