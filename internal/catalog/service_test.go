package catalog

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
)

// --- Mock Upstream ---

type mockUpstream struct {
	mock.Mock
}

func (m *mockUpstream) GetProducts(ctx context.Context, filter domain.Filter, params pagination.Params) ([]domain.Product, domain.PageInfo, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, domain.PageInfo{}, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(domain.PageInfo), args.Error(2)
}

func (m *mockUpstream) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockUpstream) GetCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

// --- Helpers ---

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, 5*time.Minute, time.Hour)
}

func newTestService(t *testing.T, up *mockUpstream) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(up, newTestCache(t), logger)
}

func pageOf(page, perPage, total, totalPages int) domain.PageInfo {
	return domain.PageInfo{
		CurrentPage:  page,
		ItemsPerPage: perPage,
		Total:        total,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

// --- ListProducts ---

func TestListProducts_PassesServerFiltersUpstream(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	filter := domain.Filter{Category: "audio", MinPrice: fptr(100)}
	params := pagination.DefaultParams()

	up.On("GetProducts", ctx, filter, params).
		Return(sampleProducts(), pageOf(1, 20, 4, 1), nil)

	listing, err := svc.ListProducts(ctx, "user-1", filter, "", params)

	require.NoError(t, err)
	require.NotNil(t, listing)
	up.AssertExpectations(t)
}

func TestListProducts_AppliesPriceBoundAndRecomputesPagination(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	filter := domain.Filter{MinPrice: fptr(100), MaxPrice: fptr(300)}
	params := pagination.DefaultParams()

	// Backend reports totals for the unbounded set.
	up.On("GetProducts", ctx, mock.Anything, params).
		Return(sampleProducts(), pageOf(1, 20, 57, 3), nil)

	listing, err := svc.ListProducts(ctx, "user-1", filter, "", params)

	require.NoError(t, err)
	require.Len(t, listing.Products, 1)
	assert.Equal(t, "p-1", listing.Products[0].ID)

	assert.Equal(t, 1, listing.Page.Total, "totals recomputed after client-side price filtering")
	assert.Equal(t, 1, listing.Page.TotalPages)
	assert.False(t, listing.Page.HasNext)
}

func TestListProducts_AppliesSortClientSide(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	params := pagination.DefaultParams()
	up.On("GetProducts", ctx, mock.Anything, params).
		Return(sampleProducts(), pageOf(1, 20, 4, 1), nil)

	listing, err := svc.ListProducts(ctx, "user-1", domain.Filter{}, domain.SortPriceDesc, params)

	require.NoError(t, err)
	assert.Equal(t, "p-2", listing.Products[0].ID)
}

func TestListProducts_KeepsUpstreamPaginationWithoutPriceBound(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	params := pagination.DefaultParams()
	up.On("GetProducts", ctx, mock.Anything, params).
		Return(sampleProducts(), pageOf(1, 20, 57, 3), nil)

	listing, err := svc.ListProducts(ctx, "user-1", domain.Filter{}, "", params)

	require.NoError(t, err)
	assert.Equal(t, 57, listing.Page.Total)
	assert.Equal(t, 3, listing.Page.TotalPages)
	assert.True(t, listing.Page.HasNext)
}

func TestListProducts_UpstreamErrorSurfaces(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	up.On("GetProducts", ctx, mock.Anything, mock.Anything).
		Return(nil, domain.PageInfo{}, assert.AnError)

	_, err := svc.ListProducts(ctx, "user-1", domain.Filter{}, "", pagination.DefaultParams())
	assert.Error(t, err)
}

// --- Generation tokens ---

func TestSaveCollection_StaleGenerationDiscarded(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	newer := []domain.Product{{ID: "new"}}
	older := []domain.Product{{ID: "old"}}

	saved, err := cache.SaveCollection(ctx, "user-1", 5, newer)
	require.NoError(t, err)
	assert.True(t, saved)

	// A slow fetch from generation 3 resolves after generation 5.
	saved, err = cache.SaveCollection(ctx, "user-1", 3, older)
	require.NoError(t, err)
	assert.False(t, saved, "older generation must not overwrite a newer one")

	got, err := cache.LoadCollection(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestSaveCollection_CorruptEntryTreatedAsMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	err := cache.client.Set(ctx, collectionKeyPrefix+"user-1", "{not json", 0).Err()
	require.NoError(t, err)

	saved, err := cache.SaveCollection(ctx, "user-1", 1, []domain.Product{{ID: "p-1"}})
	require.NoError(t, err)
	assert.True(t, saved, "an unreadable cached entry must not block writes")

	got, err := cache.LoadCollection(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p-1", got[0].ID)
}

func TestNextGeneration_MonotonicPerUser(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	g1, err := cache.NextGeneration(ctx, "user-1")
	require.NoError(t, err)
	g2, err := cache.NextGeneration(ctx, "user-1")
	require.NoError(t, err)
	assert.Greater(t, g2, g1)

	other, err := cache.NextGeneration(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "generations are scoped per user")
}

// --- GetProductDetail ---

func TestGetProductDetail_RelatedFromCachedCollection(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	// Prime the base collection the way a listing request would.
	params := pagination.DefaultParams()
	up.On("GetProducts", ctx, mock.Anything, params).
		Return(sampleProducts(), pageOf(1, 20, 4, 1), nil)
	_, err := svc.ListProducts(ctx, "user-1", domain.Filter{}, "", params)
	require.NoError(t, err)

	target := sampleProducts()[0] // p-1, category audio
	up.On("GetProductByID", ctx, "p-1").Return(&target, nil)

	detail, err := svc.GetProductDetail(ctx, "user-1", "p-1")
	require.NoError(t, err)

	assert.Equal(t, "p-1", detail.Product.ID)
	require.Len(t, detail.Related, 1, "same category, self excluded")
	assert.Equal(t, "p-2", detail.Related[0].ID)

	// No second products round trip for the related derivation.
	up.AssertNumberOfCalls(t, "GetProducts", 1)
}

func TestGetProductDetail_NoCachedCollection(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	target := sampleProducts()[0]
	up.On("GetProductByID", ctx, "p-1").Return(&target, nil)

	detail, err := svc.GetProductDetail(ctx, "user-1", "p-1")
	require.NoError(t, err)
	assert.NotNil(t, detail.Related)
	assert.Empty(t, detail.Related)
}

func TestGetProductDetail_EmptyID(t *testing.T) {
	svc := newTestService(t, new(mockUpstream))
	_, err := svc.GetProductDetail(context.Background(), "user-1", "")
	assert.Error(t, err)
}

// --- GetCategories ---

func TestGetCategories_CachesUpstreamResult(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	cats := []domain.Category{{ID: "c-1", Name: "Audio"}}
	up.On("GetCategories", ctx).Return(cats, nil).Once()

	first, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, cats, first)

	// Second call is served from cache; the mock would fail on a second
	// upstream call because of Once().
	second, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, cats, second)

	up.AssertExpectations(t)
}

func TestGetCategories_UpstreamErrorSurfaces(t *testing.T) {
	up := new(mockUpstream)
	svc := newTestService(t, up)
	ctx := context.Background()

	up.On("GetCategories", ctx).Return(nil, assert.AnError)

	_, err := svc.GetCategories(ctx)
	assert.Error(t, err)
}
