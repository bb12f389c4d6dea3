package cart

import (
	"context"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

// Repository persists the cart line items for a user. The stored shape is
// the line-item array only; aggregates are derived on load.
type Repository interface {
	// Load returns the user's saved line items. A missing or unreadable
	// slot yields an empty list, never an error from the payload itself.
	Load(ctx context.Context, userID string) ([]domain.CartItem, error)

	// Save replaces the user's saved line items.
	Save(ctx context.Context, userID string, items []domain.CartItem) error

	// Delete removes the user's slot entirely.
	Delete(ctx context.Context, userID string) error
}
