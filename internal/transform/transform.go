package transform

import (
	"strings"
	"time"

	"github.com/utafrali/StorefrontGo/internal/domain"
	"github.com/utafrali/StorefrontGo/pkg/money"
	"github.com/utafrali/StorefrontGo/pkg/pagination"
)

const defaultCurrency = "USD"

// Product maps a raw backend product to the domain shape. Nullable fields
// collapse to their zero-value defaults; the price is coerced to a finite
// number or treated as absent.
func Product(raw RawProduct) domain.Product {
	p := domain.Product{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: strOrEmpty(raw.Description),
		OnSale:      raw.OnSale,
		Stock:       raw.Stock,
		CategoryID:  strOrEmpty(raw.Category),
		Brand:       strOrEmpty(raw.Brand),
		Tags:        SplitTags(raw.Tags),
		CreatedAt:   parseTime(raw.CreatedAt),
	}

	if price, ok := money.Coerce(raw.Price); ok {
		p.Price = &price
	}
	if raw.DiscountPercent != nil {
		pct := *raw.DiscountPercent
		p.DiscountPercent = &pct
	}
	if raw.Rating != nil {
		p.Rating = *raw.Rating
	}
	if raw.RatingCount != nil {
		p.RatingCount = *raw.RatingCount
	}

	p.MainImage, p.Images = images(raw.Image, raw.Images)

	if price, ok := p.EffectiveUnitPrice(); ok {
		currency := defaultCurrency
		if raw.Currency != nil && *raw.Currency != "" {
			currency = *raw.Currency
		}
		p.DisplayPrice = money.Format(price, currency)
	}

	return p
}

// Products maps a raw product list element-wise, preserving order. A nil
// input yields an empty, non-nil slice.
func Products(raws []RawProduct) []domain.Product {
	out := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Product(raw))
	}
	return out
}

// Category maps a raw backend category to the domain shape.
func Category(raw RawCategory) domain.Category {
	c := domain.Category{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: strOrEmpty(raw.Description),
		Image:       strOrEmpty(raw.Image),
	}
	if raw.ProductCount != nil {
		c.ProductCount = *raw.ProductCount
	}
	return c
}

// Categories maps a raw category list element-wise, preserving order.
func Categories(raws []RawCategory) []domain.Category {
	out := make([]domain.Category, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Category(raw))
	}
	return out
}

// Order maps a raw backend order to the domain shape. When the order
// total cannot be resolved to a number it is recomputed from the lines.
func Order(raw RawOrder) domain.Order {
	o := domain.Order{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Status:    strOrEmpty(raw.Status),
		Items:     make([]domain.OrderItem, 0, len(raw.Items)),
		CreatedAt: parseTime(raw.CreatedAt),
	}

	lineTotals := make([]float64, 0, len(raw.Items))
	for _, rawItem := range raw.Items {
		item := OrderItem(rawItem)
		o.Items = append(o.Items, item)
		lineTotals = append(lineTotals, item.LineTotal)
	}

	if total, ok := money.Coerce(raw.TotalAmount); ok {
		o.TotalAmount = total
	} else {
		o.TotalAmount = money.Sum(lineTotals...)
	}

	return o
}

// Orders maps a raw order list element-wise, preserving order.
func Orders(raws []RawOrder) []domain.Order {
	out := make([]domain.Order, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Order(raw))
	}
	return out
}

// OrderItem maps a raw order line to the domain shape.
func OrderItem(raw RawOrderItem) domain.OrderItem {
	item := domain.OrderItem{
		ProductID: raw.ProductID,
		Name:      raw.Name,
		Quantity:  raw.Quantity,
		ImageURL:  strOrEmpty(raw.Image),
	}
	if price, ok := money.Coerce(raw.Price); ok {
		item.UnitPrice = price
		item.LineTotal = money.LineTotal(price, raw.Quantity)
	}
	return item
}

// Page maps the backend pagination block to the storefront shape. When
// the backend omits the totals they are derived from the number of loaded
// items and the page size.
func Page(meta RawPageMeta, loaded int) domain.PageInfo {
	page := meta.Page
	if page < 1 {
		page = 1
	}
	perPage := meta.PerPage
	if perPage <= 0 {
		perPage = pagination.DefaultPerPage
	}

	total, totalPages := pagination.Effective(meta.Total, meta.TotalPages, loaded, perPage)

	return domain.PageInfo{
		CurrentPage:  page,
		ItemsPerPage: perPage,
		Total:        total,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

// SplitTags parses the backend's comma-separated tag string into a
// trimmed list with empty entries dropped. A nil or blank input yields an
// empty, non-nil slice.
func SplitTags(tags *string) []string {
	out := []string{}
	if tags == nil {
		return out
	}
	for _, tag := range strings.Split(*tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// images normalizes the main image and gallery. A null image field means
// no main image and an empty gallery unless the backend sent an explicit
// image list.
func images(image *string, gallery []string) (string, []string) {
	imgs := make([]string, 0, len(gallery))
	for _, url := range gallery {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			imgs = append(imgs, trimmed)
		}
	}

	main := strOrEmpty(image)
	if main != "" && len(imgs) == 0 {
		imgs = append(imgs, main)
	}
	if main == "" && len(imgs) > 0 {
		main = imgs[0]
	}
	return main, imgs
}

func parseTime(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
