package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPerPage is the page size used when the client does not specify one.
	DefaultPerPage = 20
	// MaxPerPage caps how many items a single page may request.
	MaxPerPage = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: DefaultPerPage,
		Offset:  0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if perPage := r.URL.Query().Get("per_page"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= MaxPerPage {
			p.PerPage = v
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Effective resolves the total item count and total page count for a
// collection. The backend's values are authoritative and used verbatim when
// present; otherwise the totals are derived from the locally held collection
// length. Total pages is always at least 1, including for an empty
// collection, so that "page 1 of 1" is well-defined in every state.
// A non-positive perPage is treated as invalid and replaced with the default
// page size; the division can therefore never be by zero.
func Effective(total, totalPages *int, loaded, perPage int) (effectiveTotal, effectiveTotalPages int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	effectiveTotal = loaded
	if total != nil && *total >= 0 {
		effectiveTotal = *total
	}

	if totalPages != nil && *totalPages > 0 {
		return effectiveTotal, *totalPages
	}

	effectiveTotalPages = effectiveTotal / perPage
	if effectiveTotal%perPage > 0 {
		effectiveTotalPages++
	}
	if effectiveTotalPages < 1 {
		effectiveTotalPages = 1
	}
	return effectiveTotal, effectiveTotalPages
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult creates a paginated result. Total pages follows the same
// floor-at-1 convention as Effective.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	_, totalPages := Effective(&totalCount, nil, len(data), params.PerPage)
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Slice returns the half-open [start, end) bounds of the given page within a
// collection of length n, clamped so the bounds are always valid.
func Slice(n int, params Params) (start, end int) {
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	start = (page - 1) * perPage
	if start > n {
		start = n
	}
	end = start + perPage
	if end > n {
		end = n
	}
	return start, end
}
