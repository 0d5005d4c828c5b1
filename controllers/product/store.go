package productcontroller

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/lib/pq"

	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
)

// ProductStore is the catalog surface behind the product handlers.
type ProductStore interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, filter catalog.ListFilter) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.CategorySummary, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// cleanList trims entries and drops blanks and case-insensitive duplicates.
func cleanList(values []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func splitList(s string) pq.StringArray {
	return cleanList(strings.Split(s, ","))
}

// imagesFromCell accepts either a JSON image payload or a comma separated
// list of URLs.
func imagesFromCell(cell string) []models.ProductImage {
	cell = strings.TrimSpace(cell)
	if strings.HasPrefix(cell, "[") || strings.HasPrefix(cell, `"`) {
		return models.NormalizeImages([]byte(cell))
	}
	raw, _ := json.Marshal(cell)
	return models.NormalizeImages(raw)
}
