package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

const (
	generationKeyPrefix = "storefront:catalog:gen:"
	collectionKeyPrefix = "storefront:catalog:collection:"
	categoriesKey       = "storefront:catalog:categories"
)

// collectionEntry is the cached base collection for one user session,
// stamped with the generation of the fetch that produced it.
type collectionEntry struct {
	Generation int64            `json:"generation"`
	Products   []domain.Product `json:"products"`
}

// Cache holds the per-user base product collection and the shared
// category list in Redis. The collection cache is generation-stamped so
// an out-of-order fetch can never overwrite a newer one.
type Cache struct {
	client        *redis.Client
	collectionTTL time.Duration
	categoriesTTL time.Duration
}

// NewCache creates a catalog cache.
func NewCache(client *redis.Client, collectionTTL, categoriesTTL time.Duration) *Cache {
	return &Cache{
		client:        client,
		collectionTTL: collectionTTL,
		categoriesTTL: categoriesTTL,
	}
}

// NextGeneration reserves the next fetch generation for the user. Each
// listing request takes a token before calling upstream; a larger token
// always denotes a newer request.
func (c *Cache) NextGeneration(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Incr(ctx, generationKeyPrefix+userID).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr generation: %w", err)
	}
	// Let abandoned counters expire with the session.
	c.client.Expire(ctx, generationKeyPrefix+userID, c.collectionTTL*10)
	return gen, nil
}

// saveCollectionScript compares the cached generation and writes in one
// atomic step, so a stale fetch cannot slip in between a newer writer's
// check and its set. An unreadable cached entry counts as a miss.
var saveCollectionScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, entry = pcall(cjson.decode, cur)
	if ok and entry.generation and tonumber(entry.generation) > tonumber(ARGV[1]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// SaveCollection stores the user's base collection unless a newer
// generation is already cached. Returns false when the write was
// discarded as stale.
func (c *Cache) SaveCollection(ctx context.Context, userID string, gen int64, products []domain.Product) (bool, error) {
	data, err := json.Marshal(collectionEntry{Generation: gen, Products: products})
	if err != nil {
		return false, fmt.Errorf("marshal collection: %w", err)
	}

	saved, err := saveCollectionScript.Run(ctx, c.client,
		[]string{collectionKeyPrefix + userID},
		gen, data, c.collectionTTL.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis save collection: %w", err)
	}
	return saved == 1, nil
}

// LoadCollection returns the user's cached base collection, or an empty
// slice when nothing usable is cached.
func (c *Cache) LoadCollection(ctx context.Context, userID string) ([]domain.Product, error) {
	entry, _, err := c.loadEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return []domain.Product{}, nil
	}
	return entry.Products, nil
}

func (c *Cache) loadEntry(ctx context.Context, userID string) (*collectionEntry, bool, error) {
	data, err := c.client.Get(ctx, collectionKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get collection: %w", err)
	}

	var entry collectionEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt cache entry is a miss, not a failure.
		return nil, false, nil
	}
	return &entry, true, nil
}

// Categories returns the cached category list; ok is false on a miss.
func (c *Cache) Categories(ctx context.Context) ([]domain.Category, bool, error) {
	data, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get categories: %w", err)
	}

	var cats []domain.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, false, nil
	}
	return cats, true, nil
}

// SaveCategories stores the category list with its TTL.
func (c *Cache) SaveCategories(ctx context.Context, cats []domain.Category) error {
	data, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if err := c.client.Set(ctx, categoriesKey, data, c.categoriesTTL).Err(); err != nil {
		return fmt.Errorf("redis set categories: %w", err)
	}
	return nil
}
