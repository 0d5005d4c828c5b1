// Package catalog provides read access to the product collection for search
// and cart lookups, backed by Postgres (GORM) or Supabase.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/junaidrashid-git/storefront-api/models"
)

// ErrProductNotFound is returned by lookups for an unknown product id.
var ErrProductNotFound = errors.New("product not found")

// Query is a recall query: products whose text fields contain any of Terms.
type Query struct {
	Terms    []string
	Category string
	Limit    int
}

// Source finds candidate products for a recall query.
type Source interface {
	FindCandidates(ctx context.Context, q Query) ([]models.Product, error)
}

// ProductFinder looks up a single product.
type ProductFinder interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

// Matches reports whether the product's name, description, category, tags or
// colors contain any of terms, ignoring case. An empty term list matches nothing.
func Matches(p models.Product, terms []string) bool {
	fields := make([]string, 0, 3+len(p.Tags)+len(p.Colors))
	fields = append(fields, strings.ToLower(p.Name), strings.ToLower(p.Description), strings.ToLower(p.Category))
	for _, t := range p.Tags {
		fields = append(fields, strings.ToLower(t))
	}
	for _, c := range p.Colors {
		fields = append(fields, strings.ToLower(c))
	}

	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for _, f := range fields {
			if strings.Contains(f, term) {
				return true
			}
		}
	}
	return false
}

// InCategory reports whether the product belongs to category, ignoring case.
// An empty category accepts every product.
func InCategory(p models.Product, category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || strings.EqualFold(strings.TrimSpace(p.Category), category)
}
