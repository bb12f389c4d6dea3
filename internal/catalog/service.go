// Package catalog implements the product browsing experience: listing
// with mixed server-side and client-side filtering, product detail with
// related-product derivation, and the category list.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/StorefrontGo/internal/domain"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
)

// relatedLimit caps how many related products a detail response carries.
const relatedLimit = 4

// Upstream is the slice of the backend façade the catalog needs.
type Upstream interface {
	GetProducts(ctx context.Context, filter domain.Filter, params pagination.Params) ([]domain.Product, domain.PageInfo, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// Listing is a page of products ready for the client.
type Listing struct {
	Products []domain.Product `json:"products"`
	Page     domain.PageInfo  `json:"page"`
}

// ProductDetail is a product plus related products from the same category.
type ProductDetail struct {
	Product *domain.Product  `json:"product"`
	Related []domain.Product `json:"related"`
}

// Service implements catalog browsing.
type Service struct {
	upstream Upstream
	cache    *Cache
	logger   *slog.Logger
}

// NewService creates a catalog service.
func NewService(upstream Upstream, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		upstream: upstream,
		cache:    cache,
		logger:   logger,
	}
}

// ListProducts returns a filtered, sorted page of products. Server-side
// filter dimensions are forwarded upstream; the price range and the sort
// are applied here over the fetched page set. The fetched base collection
// is cached per user under a generation token so that a slow, superseded
// fetch cannot overwrite the collection of a newer one.
func (s *Service) ListProducts(ctx context.Context, userID string, filter domain.Filter, sortKey string, params pagination.Params) (*Listing, error) {
	userID = sessionKey(userID)
	gen, err := s.cache.NextGeneration(ctx, userID)
	if err != nil {
		// The generation counter is an optimization; listing still works
		// without it, the fetch just will not be cached.
		s.logger.WarnContext(ctx, "generation counter unavailable",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		gen = -1
	}

	products, page, err := s.upstream.GetProducts(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	if gen >= 0 {
		saved, err := s.cache.SaveCollection(ctx, userID, gen, products)
		if err != nil {
			s.logger.WarnContext(ctx, "collection cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		} else if !saved {
			s.logger.DebugContext(ctx, "discarded stale collection fetch",
				slog.String("user_id", userID),
				slog.Int64("generation", gen),
			)
		}
	}

	// Price bounds and ordering are applied client-side; everything else
	// was already filtered upstream.
	clientFilter := domain.Filter{MinPrice: filter.MinPrice, MaxPrice: filter.MaxPrice}
	filtered := FilterAndSort(products, clientFilter, sortKey)

	if filter.HasPriceBound() {
		// The backend's totals describe the unbounded result set, so they
		// no longer apply once the price filter has dropped items.
		total, totalPages := pagination.Effective(nil, nil, len(filtered), params.PerPage)
		page = domain.PageInfo{
			CurrentPage:  page.CurrentPage,
			ItemsPerPage: page.ItemsPerPage,
			Total:        total,
			TotalPages:   totalPages,
			HasNext:      page.CurrentPage < totalPages,
			HasPrev:      page.CurrentPage > 1,
		}
	}

	return &Listing{Products: filtered, Page: page}, nil
}

// GetProductDetail returns a product and up to four related products.
// Related products are derived from the user's cached base collection
// rather than a second backend round trip: same category, the product
// itself excluded.
func (s *Service) GetProductDetail(ctx context.Context, userID, id string) (*ProductDetail, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.upstream.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}

	related := []domain.Product{}
	collection, err := s.cache.LoadCollection(ctx, sessionKey(userID))
	if err != nil {
		s.logger.WarnContext(ctx, "collection cache read failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else {
		for _, candidate := range collection {
			if candidate.ID == product.ID {
				continue
			}
			if product.CategoryID == "" || candidate.CategoryID != product.CategoryID {
				continue
			}
			related = append(related, candidate)
			if len(related) == relatedLimit {
				break
			}
		}
	}

	return &ProductDetail{Product: product, Related: related}, nil
}

// GetCategories returns the category list, served from cache when fresh.
func (s *Service) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if cats, ok, err := s.cache.Categories(ctx); err != nil {
		s.logger.WarnContext(ctx, "categories cache read failed",
			slog.String("error", err.Error()),
		)
	} else if ok {
		return cats, nil
	}

	cats, err := s.upstream.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	if err := s.cache.SaveCategories(ctx, cats); err != nil {
		s.logger.WarnContext(ctx, "categories cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return cats, nil
}

// sessionKey scopes the collection cache. Anonymous browsers share one
// slot; related-product derivation is approximate for them.
func sessionKey(userID string) string {
	if userID == "" {
		return "anon"
	}
	return userID
}
