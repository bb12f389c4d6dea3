package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

const keyPrefix = "storefront:cart:"

// CartRepository stores each user's cart as a JSON array of line items in
// a single Redis slot.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load retrieves the user's saved line items. A missing slot and a
// corrupt or non-array payload both yield an empty list: a broken saved
// cart must never take the cart feature down with it.
func (r *CartRepository) Load(ctx context.Context, userID string) ([]domain.CartItem, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []domain.CartItem{}, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		r.logger.WarnContext(ctx, "discarding corrupt saved cart",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []domain.CartItem{}, nil
	}
	if items == nil {
		items = []domain.CartItem{}
	}

	return items, nil
}

// Save persists the user's line items with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, userID string, items []domain.CartItem) error {
	key := keyPrefix + userID

	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the user's cart slot.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	key := keyPrefix + userID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
