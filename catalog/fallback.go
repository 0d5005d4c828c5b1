package catalog

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/models"
)

// Lister returns a bounded slice of the catalog, optionally restricted to a category.
type Lister interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error)
}

// FallbackSource serves recall queries for data sources that cannot evaluate
// OR-combined contains predicates: it fetches a bounded candidate set and
// filters it in memory.
type FallbackSource struct {
	lister Lister
	limit  int
}

func NewFallbackSource(lister Lister, limit int) *FallbackSource {
	if limit <= 0 {
		limit = 200
	}
	return &FallbackSource{lister: lister, limit: limit}
}

func (s *FallbackSource) FindCandidates(ctx context.Context, q Query) ([]models.Product, error) {
	products, err := s.lister.ListProducts(ctx, ListFilter{Category: q.Category, Limit: s.limit})
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !InCategory(p, q.Category) || !Matches(p, q.Terms) {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}
