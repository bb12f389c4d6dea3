package domain

// PageInfo is the pagination metadata shape returned to clients.
type PageInfo struct {
	CurrentPage  int  `json:"current_page"`
	ItemsPerPage int  `json:"items_per_page"`
	Total        int  `json:"total"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}
