package domain

// Sort keys accepted by the catalog listing. An unrecognized key leaves
// the collection in its original order.
const (
	SortNewest      = "newest"
	SortOldest      = "oldest"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortNameAsc     = "name_asc"
	SortNameDesc    = "name_desc"
	SortTopRated    = "top_rated"
	SortPopular     = "popular"
	SortBestSelling = "best_selling"
)

// Filter is an open set of optional product predicates. A nil or zero
// field means no constraint on that dimension. MinPrice and MaxPrice are
// client-side only and are never forwarded to the backend.
type Filter struct {
	Query     string
	Category  string
	Brand     string
	Tags      []string
	InStock   bool
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

// HasPriceBound reports whether either price-range predicate is active.
func (f Filter) HasPriceBound() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}
