package models

// CategorySummary is a category label with the number of live products carrying it.
type CategorySummary struct {
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
}
