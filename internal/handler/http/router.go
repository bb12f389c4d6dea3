package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/StorefrontGo/internal/cart"
	"github.com/utafrali/StorefrontGo/internal/catalog"
	"github.com/utafrali/StorefrontGo/pkg/health"
	"github.com/utafrali/StorefrontGo/pkg/middleware"
)

// catalogCacheMaxAge is the browser cache window for catalog GETs.
const catalogCacheMaxAge = 60

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	catalogService *catalog.Service,
	cartService *cart.Service,
	orders OrderReader,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsCfg middleware.CORSConfig,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	catalogHandler := NewCatalogHandler(catalogService, logger)
	cartHandler := NewCartHandler(cartService, logger)
	orderHandler := NewOrderHandler(orders, logger)

	// Catalog endpoints: identity is optional metadata (it scopes the
	// per-session collection cache), so no auth middleware here.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.CacheControl(catalogCacheMaxAge))
		r.Use(optionalUserID)

		r.Get("/", catalogHandler.ListProducts)
		r.Get("/{id}", catalogHandler.GetProduct)
	})

	r.With(middleware.CacheControl(catalogCacheMaxAge)).
		Get("/api/v1/categories", catalogHandler.ListCategories)

	// Cart endpoints require the gateway-injected identity.
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)

		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
		r.Delete("/items/{productId}", cartHandler.RemoveItem)
	})

	// Order endpoints are user-scoped reads.
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(UserIDFromHeader)

		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
	})

	return r
}

// optionalUserID stores the X-User-ID header in the context when present
// but lets anonymous requests through.
func optionalUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-User-ID"); uid != "" {
			r = r.WithContext(contextWithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}
