// Package upstream wraps the external commerce backend's REST API. It
// converts storefront filter and pagination state into backend query
// parameters, decodes the backend's response envelope, and normalizes
// payloads through the transform package.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/internal/transform"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/httpclient"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "upstream_requests_total",
		Help:      "Total requests issued to the commerce backend, by resource and outcome.",
	},
	[]string{"resource", "outcome"},
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback is a fallback function for the backend circuit breaker.
// When the circuit is open, it returns a structured error with a retry hint
// instead of letting the raw ErrCircuitOpen propagate.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("commerce backend is temporarily unavailable, please retry after 30 seconds")
}

// Client is the commerce backend façade.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a backend client against the given base URL
// (e.g. "http://commerce-backend:8080").
func NewClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// GetProducts fetches a page of products. Server-side filter dimensions
// are forwarded as query parameters; the price-range bounds are client
// side only and never reach the backend. Page numbering is converted to
// the backend's skip/limit convention.
func (c *Client) GetProducts(ctx context.Context, filter domain.Filter, params pagination.Params) ([]domain.Product, domain.PageInfo, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(params.Offset))
	q.Set("limit", strconv.Itoa(params.PerPage))

	if query := strings.TrimSpace(filter.Query); query != "" {
		q.Set("q", query)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Brand != "" {
		q.Set("brand", filter.Brand)
	}
	if len(filter.Tags) > 0 {
		q.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.InStock {
		q.Set("in_stock", "true")
	}
	if filter.MinRating != nil {
		q.Set("min_rating", strconv.FormatFloat(*filter.MinRating, 'f', -1, 64))
	}

	env, err := c.get(ctx, "products", "/api/v1/products?"+q.Encode(), "")
	if err != nil {
		return nil, domain.PageInfo{}, err
	}

	var raws []transform.RawProduct
	if err := json.Unmarshal(env.Data, &raws); err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("decode products payload: %w", err)
	}

	products := transform.Products(raws)
	return products, pageInfo(env.Meta, params, len(products)), nil
}

// GetProductByID fetches a single product.
func (c *Client) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	env, err := c.get(ctx, "products", "/api/v1/products/"+url.PathEscape(id), "")
	if err != nil {
		return nil, err
	}

	var raw transform.RawProduct
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, fmt.Errorf("decode product payload: %w", err)
	}

	product := transform.Product(raw)
	return &product, nil
}

// GetCategories fetches the category list.
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	env, err := c.get(ctx, "categories", "/api/v1/categories", "")
	if err != nil {
		return nil, err
	}

	var raws []transform.RawCategory
	if err := json.Unmarshal(env.Data, &raws); err != nil {
		return nil, fmt.Errorf("decode categories payload: %w", err)
	}

	return transform.Categories(raws), nil
}

// GetOrders fetches a page of the user's orders.
func (c *Client) GetOrders(ctx context.Context, userID string, params pagination.Params) ([]domain.Order, domain.PageInfo, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(params.Offset))
	q.Set("limit", strconv.Itoa(params.PerPage))

	env, err := c.get(ctx, "orders", "/api/v1/orders?"+q.Encode(), userID)
	if err != nil {
		return nil, domain.PageInfo{}, err
	}

	var raws []transform.RawOrder
	if err := json.Unmarshal(env.Data, &raws); err != nil {
		return nil, domain.PageInfo{}, fmt.Errorf("decode orders payload: %w", err)
	}

	orders := transform.Orders(raws)
	return orders, pageInfo(env.Meta, params, len(orders)), nil
}

// GetOrderByID fetches a single order scoped to the user.
func (c *Client) GetOrderByID(ctx context.Context, userID, id string) (*domain.Order, error) {
	env, err := c.get(ctx, "orders", "/api/v1/orders/"+url.PathEscape(id), userID)
	if err != nil {
		return nil, err
	}

	var raw transform.RawOrder
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, fmt.Errorf("decode order payload: %w", err)
	}

	order := transform.Order(raw)
	return &order, nil
}

// get issues a GET against the backend and decodes the standard envelope.
// Backend failures keep their status code and message (never swallowed);
// an envelope whose success flag is false is treated the same way.
func (c *Client) get(ctx context.Context, resource, path, userID string) (*transform.Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		requestsTotal.WithLabelValues(resource, "error").Inc()
		return nil, fmt.Errorf("call backend %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestsTotal.WithLabelValues(resource, "upstream_error").Inc()
		return nil, httpclient.ParseResponseError(resp, "backend")
	}

	var env transform.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		requestsTotal.WithLabelValues(resource, "decode_error").Inc()
		return nil, fmt.Errorf("decode %s envelope: %w", resource, err)
	}

	if !env.Success {
		requestsTotal.WithLabelValues(resource, "upstream_error").Inc()
		c.logger.WarnContext(ctx, "backend reported failure inside 2xx response",
			slog.String("resource", resource),
			slog.Int("status_code", env.StatusCode),
		)
		return nil, apperrors.Upstream(env.StatusCode, env.Message)
	}

	requestsTotal.WithLabelValues(resource, "success").Inc()
	return &env, nil
}

// pageInfo maps the envelope's pagination block, synthesizing one from
// the request parameters and the loaded item count when the backend
// omitted it.
func pageInfo(meta *transform.RawPageMeta, params pagination.Params, loaded int) domain.PageInfo {
	if meta == nil {
		meta = &transform.RawPageMeta{Page: params.Page, PerPage: params.PerPage}
	}
	return transform.Page(*meta, loaded)
}
