package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := NewCartRepository(client, 24*time.Hour, logger)
	return repo, mr
}

func sampleItems() []domain.CartItem {
	return []domain.CartItem{
		{
			ProductID:           "prod-1",
			Name:                "Widget",
			Quantity:            2,
			UnitPrice:           19.99,
			DiscountedUnitPrice: 19.99,
			Price:               39.98,
			FinalPrice:          39.98,
			ImageURL:            "https://img.example.com/w.jpg",
		},
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestCartRepository_Load_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	items := sampleItems()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, mr.Set("storefront:cart:user-1", string(data)))

	got, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "prod-1", got[0].ProductID)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, 19.99, got[0].UnitPrice)
}

func TestCartRepository_Load_MissingSlotIsEmptyCart(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Load(context.Background(), "user-without-cart")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCartRepository_Load_CorruptPayloadIsEmptyCart(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:cart:user-1", "{not json"))

	got, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCartRepository_Load_NonArrayPayloadIsEmptyCart(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:cart:user-1", `{"product_id":"prod-1"}`))

	got, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCartRepository_Load_NullPayloadIsEmptyCart(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("storefront:cart:user-1", "null"))

	got, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestCartRepository_SaveThenLoad_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)

	items := sampleItems()
	require.NoError(t, repo.Save(context.Background(), "user-1", items))

	got, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "user-1", sampleItems()))

	ttl := mr.TTL("storefront:cart:user-1")
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestCartRepository_Save_NilItemsStoresEmptyArray(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "user-1", nil))

	raw, err := mr.Get("storefront:cart:user-1")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), "user-1", sampleItems()))
	require.NoError(t, repo.Delete(context.Background(), "user-1"))

	assert.False(t, mr.Exists("storefront:cart:user-1"))
}

func TestCartRepository_Delete_MissingSlotIsNoop(t *testing.T) {
	repo, _ := setupTestRedis(t)
	assert.NoError(t, repo.Delete(context.Background(), "nobody"))
}
