package domain

// Category is a read-only catalog grouping supplied by the backend.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	ProductCount int    `json:"product_count"`
}
