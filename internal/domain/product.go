package domain

import (
	"time"

	"github.com/utafrali/StorefrontGo/pkg/money"
)

// Product is the storefront-shaped product record. Upstream payloads are
// normalized into this shape by the transform package; fields that arrive
// null or malformed are defaulted there, so consumers can rely on Tags and
// Images never being nil.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           *float64  `json:"price,omitempty"`
	DiscountPercent *float64  `json:"discount_percent,omitempty"`
	OnSale          bool      `json:"on_sale"`
	Stock           int       `json:"stock"`
	CategoryID      string    `json:"category_id"`
	Brand           string    `json:"brand"`
	Tags            []string  `json:"tags"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"rating_count"`
	MainImage       string    `json:"main_image"`
	Images          []string  `json:"images"`
	DisplayPrice    string    `json:"display_price"`
	CreatedAt       time.Time `json:"created_at"`
}

// UnitPrice returns the product's price when one is known. The second
// return value is false when the upstream record carried no resolvable
// price.
func (p *Product) UnitPrice() (float64, bool) {
	if p.Price == nil {
		return 0, false
	}
	return *p.Price, true
}

// EffectiveUnitPrice returns the per-unit price after any discount. The
// discount applies only when the product is flagged on sale and a discount
// percent is present; otherwise the regular price is returned unchanged.
func (p *Product) EffectiveUnitPrice() (float64, bool) {
	price, ok := p.UnitPrice()
	if !ok {
		return 0, false
	}
	if p.OnSale && p.DiscountPercent != nil {
		return money.WithDiscount(price, *p.DiscountPercent), true
	}
	return price, true
}

// InStock reports whether the product has any units available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
