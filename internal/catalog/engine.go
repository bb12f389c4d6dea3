package catalog

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/StorefrontGo/internal/domain"
)

// FilterAndSort applies the filter predicates and sort key to a product
// collection. It is pure: the input slice is never mutated and the result
// is always a fresh slice. An unrecognized sort key returns the filtered
// products in their original order.
func FilterAndSort(products []domain.Product, filter domain.Filter, sortKey string) []domain.Product {
	out := make([]domain.Product, 0, len(products))

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	for _, p := range products {
		if matches(p, filter, query) {
			out = append(out, p)
		}
	}

	sortProducts(out, sortKey)
	return out
}

// matches checks a single product against every active predicate. A zero
// or nil predicate field places no constraint on that dimension.
func matches(p domain.Product, filter domain.Filter, queryLower string) bool {
	// Free-text match on name and description.
	if queryLower != "" {
		nameLower := strings.ToLower(p.Name)
		descLower := strings.ToLower(p.Description)
		if !strings.Contains(nameLower, queryLower) && !strings.Contains(descLower, queryLower) {
			return false
		}
	}

	// Category filter.
	if filter.Category != "" && p.CategoryID != filter.Category {
		return false
	}

	// Brand filter.
	if filter.Brand != "" && p.Brand != filter.Brand {
		return false
	}

	// Tag filter: the product must carry every requested tag.
	for _, want := range filter.Tags {
		if !hasTag(p.Tags, want) {
			return false
		}
	}

	// Stock filter.
	if filter.InStock && !p.InStock() {
		return false
	}

	// Rating floor.
	if filter.MinRating != nil && p.Rating < *filter.MinRating {
		return false
	}

	// Price range: inclusive bounds. A product without a resolvable price
	// is excluded whenever a bound is active, included otherwise.
	if filter.HasPriceBound() {
		price, ok := p.UnitPrice()
		if !ok {
			return false
		}
		if filter.MinPrice != nil && price < *filter.MinPrice {
			return false
		}
		if filter.MaxPrice != nil && price > *filter.MaxPrice {
			return false
		}
	}

	return true
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

// sortProducts orders products in place by the given key. All comparators
// use defensive defaults so a record with missing fields can never panic
// a comparison: missing price sorts as 0, missing name as the empty
// string, an unparsed timestamp as the zero time. Sorting is stable, so
// ties keep their original order.
func sortProducts(products []domain.Product, sortKey string) {
	switch sortKey {
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return priceOrZero(products[i]) < priceOrZero(products[j])
		})
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return priceOrZero(products[i]) > priceOrZero(products[j])
		})
	case domain.SortNameAsc:
		c := newCollator()
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Name, products[j].Name) < 0
		})
	case domain.SortNameDesc:
		c := newCollator()
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Name, products[j].Name) > 0
		})
	case domain.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	case domain.SortOldest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		})
	case domain.SortTopRated:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case domain.SortPopular:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].RatingCount > products[j].RatingCount
		})
	case domain.SortBestSelling:
		sort.SliceStable(products, func(i, j int) bool {
			return salesScore(products[i]) > salesScore(products[j])
		})
	default:
		// Unknown key: keep the original order.
	}
}

// newCollator builds a fresh collator per sort; a collate.Collator is not
// safe for concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

func priceOrZero(p domain.Product) float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// salesScore is a proxy for sales volume when real figures are not
// available: highly rated products with many ratings rank first.
func salesScore(p domain.Product) float64 {
	return p.Rating * math.Log(float64(p.RatingCount)+1)
}
