// Package transform maps raw backend payloads into storefront domain
// shapes. Every function here is total: malformed or missing fields are
// repaired to safe defaults, never surfaced as errors.
package transform

import "encoding/json"

// Envelope is the backend's standard response wrapper.
type Envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Meta       *RawPageMeta    `json:"meta,omitempty"`
}

// RawPageMeta is the pagination block the backend attaches to list
// responses. Total and TotalPages are pointers because the backend omits
// them on some endpoints.
type RawPageMeta struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      *int `json:"total"`
	TotalPages *int `json:"total_pages"`
}

// RawProduct is a product record as the backend serializes it. Price is
// untyped because upstream data has been observed carrying numbers,
// numeric strings, and null in that field.
type RawProduct struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	Price           any      `json:"price"`
	DiscountPercent *float64 `json:"discount_percent"`
	OnSale          bool     `json:"on_sale"`
	Stock           int      `json:"stock"`
	Category        *string  `json:"category"`
	Brand           *string  `json:"brand"`
	Tags            *string  `json:"tags"`
	Rating          *float64 `json:"rating"`
	RatingCount     *int     `json:"rating_count"`
	Image           *string  `json:"image"`
	Images          []string `json:"images"`
	Currency        *string  `json:"currency"`
	CreatedAt       *string  `json:"created_at"`
}

// RawCategory is a category record as the backend serializes it.
type RawCategory struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Image        *string `json:"image"`
	ProductCount *int    `json:"product_count"`
}

// RawOrder is an order record as the backend serializes it.
type RawOrder struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Status      *string        `json:"status"`
	Items       []RawOrderItem `json:"items"`
	TotalAmount any            `json:"total_amount"`
	CreatedAt   *string        `json:"created_at"`
}

// RawOrderItem is a single order line as the backend serializes it.
type RawOrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     any     `json:"price"`
	Image     *string `json:"image"`
}
