// Package cart implements the shopping cart over a Redis-backed line-item
// store. All price math lives in the domain cart model; this service
// validates input, resolves products upstream, and persists after every
// mutation.
package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/debounce"
	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines allowed in a cart.
	MaxItemsPerCart = 50
)

// ProductGetter resolves products from the commerce backend. Prices and
// names on cart lines always come from this source, never from the client.
type ProductGetter interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
}

// Publisher publishes cart domain events.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, userID string) error
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityInput holds the parameters for updating a line quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// Service implements the business logic for cart operations.
type Service struct {
	repo      Repository
	products  ProductGetter
	publisher Publisher
	debouncer *debounce.Debouncer
	logger    *slog.Logger
}

// NewService creates a new cart service. The debouncer coalesces bursts
// of mutations by the same user into a single cart.updated event.
func NewService(repo Repository, products ProductGetter, publisher Publisher, debouncer *debounce.Debouncer, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		publisher: publisher,
		debouncer: debouncer,
		logger:    logger,
	}
}

// GetCart retrieves the cart for a user. A user without a saved cart gets
// an empty one.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	return s.loadCart(ctx, userID)
}

// AddItem adds qty units of a product to the user's cart, merging into an
// existing line for the same product. The product is resolved upstream so
// the stored unit price can never be client-supplied.
func (s *Service) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.products.GetProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(input.ProductID); idx >= 0 {
		if cart.Items[idx].Quantity+input.Quantity > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
	} else if len(cart.Items) >= MaxItemsPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	}

	cart.AddItem(product, input.Quantity)

	if err := s.repo.Save(ctx, userID, cart.Items); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// SetQuantity replaces the quantity of a cart line. A quantity of zero
// removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.FindItemIndex(productID) < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	cart.SetQuantity(productID, quantity)

	if err := s.repo.Save(ctx, userID, cart.Items); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveItem removes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.FindItemIndex(productID) < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	cart.RemoveItem(productID)

	if err := s.repo.Save(ctx, userID, cart.Items); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return cart, nil
}

// ClearCart deletes the user's cart slot. The cleared event is published
// immediately and any pending debounced update for the user is dropped so
// a stale update cannot fire after the clear.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.debouncer.Cancel(debounceKey(userID))
	if err := s.publisher.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// loadCart restores the user's cart from storage, recomputing all derived
// totals from the persisted line items.
func (s *Service) loadCart(ctx context.Context, userID string) (*domain.Cart, error) {
	items, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := domain.NewCart(userID)
	cart.Initialize(items)
	return cart, nil
}

// publishUpdated schedules a debounced cart.updated event. Publish
// failures are logged, never surfaced: events are best-effort and must
// not fail the mutation that triggered them.
func (s *Service) publishUpdated(ctx context.Context, cart *domain.Cart) {
	// The event fires after the request finishes, so detach it from the
	// request's cancellation while keeping its values.
	eventCtx := context.WithoutCancel(ctx)

	s.debouncer.Call(debounceKey(cart.UserID), func() {
		if err := s.publisher.PublishCartUpdated(eventCtx, cart); err != nil {
			s.logger.ErrorContext(eventCtx, "failed to publish cart.updated event",
				slog.String("user_id", cart.UserID),
				slog.String("error", err.Error()),
			)
		}
	})
}

func debounceKey(userID string) string {
	return "cart:" + userID
}
