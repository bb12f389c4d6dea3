package domain

import (
	"time"

	"github.com/utafrali/StorefrontGo/pkg/money"
)

// CartItem is a single cart line. Price is the undiscounted line total
// (unit price times quantity) and FinalPrice the total after any per-unit
// discount. Both are recomputed whenever the quantity changes.
type CartItem struct {
	ProductID           string  `json:"product_id"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	DiscountedUnitPrice float64 `json:"discounted_unit_price"`
	Price               float64 `json:"price"`
	FinalPrice          float64 `json:"final_price"`
	ImageURL            string  `json:"image_url,omitempty"`
}

// recompute refreshes the line totals from the unit prices and quantity.
func (i *CartItem) recompute() {
	i.Price = money.LineTotal(i.UnitPrice, i.Quantity)
	i.FinalPrice = money.LineTotal(i.DiscountedUnitPrice, i.Quantity)
}

// Cart is an ordered collection of line items keyed by product ID. The
// aggregates TotalItems and TotalPrice are derived state: they are
// recomputed from the items after every mutation and never patched
// incrementally, so they cannot drift from the lines.
type Cart struct {
	UserID     string     `json:"user_id"`
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// FindItemIndex returns the index of the line for the given product,
// or -1 when the product is not in the cart.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds qty units of the product. When a line for the product
// already exists its quantity is merged; the cart never holds duplicate
// lines for one product. Products without a resolvable price are added
// with a zero unit price.
func (c *Cart) AddItem(p *Product, qty int) {
	if qty < 1 {
		return
	}

	if idx := c.FindItemIndex(p.ID); idx >= 0 {
		c.Items[idx].Quantity += qty
		c.Items[idx].recompute()
		c.Recalculate()
		return
	}

	unit, _ := p.UnitPrice()
	discounted, _ := p.EffectiveUnitPrice()

	item := CartItem{
		ProductID:           p.ID,
		Name:                p.Name,
		Quantity:            qty,
		UnitPrice:           unit,
		DiscountedUnitPrice: discounted,
		ImageURL:            p.MainImage,
	}
	item.recompute()

	c.Items = append(c.Items, item)
	c.Recalculate()
}

// SetQuantity replaces the quantity of the product's line. A quantity of
// zero or below removes the line. Setting a quantity for a product not in
// the cart is a no-op.
func (c *Cart) SetQuantity(productID string, qty int) {
	idx := c.FindItemIndex(productID)
	if idx < 0 {
		return
	}

	if qty <= 0 {
		c.RemoveItem(productID)
		return
	}

	c.Items[idx].Quantity = qty
	c.Items[idx].recompute()
	c.Recalculate()
}

// RemoveItem deletes the product's line, preserving the order of the rest.
func (c *Cart) RemoveItem(productID string) {
	idx := c.FindItemIndex(productID)
	if idx < 0 {
		return
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Recalculate()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recalculate()
}

// Initialize replaces the entire line-item collection, used when a cart
// is restored from storage. Line and aggregate totals are recomputed so a
// stale or hand-edited payload cannot carry inconsistent totals.
func (c *Cart) Initialize(items []CartItem) {
	if items == nil {
		items = []CartItem{}
	}
	c.Items = items
	for i := range c.Items {
		c.Items[i].recompute()
	}
	c.Recalculate()
}

// Recalculate derives the aggregate totals from the current line items.
func (c *Cart) Recalculate() {
	totalItems := 0
	finals := make([]float64, 0, len(c.Items))
	for i := range c.Items {
		totalItems += c.Items[i].Quantity
		finals = append(finals, c.Items[i].FinalPrice)
	}
	c.TotalItems = totalItems
	c.TotalPrice = money.Sum(finals...)
	c.UpdatedAt = time.Now().UTC()
}
