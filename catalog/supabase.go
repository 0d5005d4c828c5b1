package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/supabase-community/supabase-go"
	"gorm.io/datatypes"

	"github.com/junaidrashid-git/storefront-api/models"
)

const (
	productSelect = "*,product_images(*)"

	// defaultArrayScan bounds the rows fetched to match tags and colors in memory.
	defaultArrayScan = 200
)

// supabaseProduct is the row shape returned by PostgREST. The legacy images
// column may hold a string, an array of strings or an array of objects.
type supabaseProduct struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Slug          string                `json:"slug"`
	SKU           string                `json:"sku"`
	Description   string                `json:"description"`
	Price         float64               `json:"price"`
	Category      string                `json:"category"`
	Tags          []string              `json:"tags"`
	Colors        []string              `json:"colors"`
	Sizes         []string              `json:"sizes"`
	Stock         int                   `json:"stock"`
	Images        datatypes.JSON        `json:"images"`
	ProductImages []models.ProductImage `json:"product_images"`
}

func (row supabaseProduct) toProduct() models.Product {
	images := row.ProductImages
	if len(images) == 0 {
		images = models.NormalizeImages(row.Images)
	}
	return models.Product{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        row.Slug,
		SKU:         row.SKU,
		Description: row.Description,
		Price:       row.Price,
		Category:    row.Category,
		Tags:        row.Tags,
		Colors:      row.Colors,
		Sizes:       row.Sizes,
		Stock:       row.Stock,
		Images:      images,
	}
}

// SupabaseSource evaluates recall queries through the Supabase REST API.
// PostgREST can only test array columns for exact, case-sensitive elements,
// so text columns are recalled server-side with ilike while tags and colors
// are matched in memory over a bounded scan of the table.
type SupabaseSource struct {
	client    *supabase.Client
	table     string
	arrayScan int
}

func NewSupabaseSource(url, key string) (*SupabaseSource, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create supabase client")
	}
	return &SupabaseSource{client: client, table: "products", arrayScan: defaultArrayScan}, nil
}

// WithArrayScan sets how many rows are scanned for tag and color matches.
func (s *SupabaseSource) WithArrayScan(n int) *SupabaseSource {
	if n > 0 {
		s.arrayScan = n
	}
	return s
}

func (s *SupabaseSource) FindCandidates(ctx context.Context, q Query) ([]models.Product, error) {
	filter := recallFilter(q.Terms)
	if filter == "" {
		return []models.Product{}, nil
	}

	builder := s.client.From(s.table).Select(productSelect, "", false).Or(filter, "")
	if category := strings.TrimSpace(q.Category); category != "" {
		builder = builder.Ilike("category", sanitizeTerm(category))
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit, "")
	}

	var rows []supabaseProduct
	if _, err := builder.ExecuteTo(&rows); err != nil {
		return nil, errors.Wrap(err, "supabase recall query")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanned, err := s.ListProducts(ctx, ListFilter{Category: q.Category, Limit: s.arrayScan})
	if err != nil {
		return nil, err
	}
	return mergeCandidates(toProducts(rows), scanned, q, arrayMatches), nil
}

// arrayMatches is Matches restricted to tags and colors.
func arrayMatches(p models.Product, terms []string) bool {
	return Matches(models.Product{Tags: p.Tags, Colors: p.Colors}, terms)
}

// mergeCandidates keeps the server-side hits in order, then appends scanned
// products accepted by match, without repeating ids and up to q.Limit.
func mergeCandidates(recalled, scanned []models.Product, q Query, match func(models.Product, []string) bool) []models.Product {
	out := make([]models.Product, 0, len(recalled))
	seen := make(map[string]bool, len(recalled))
	full := func() bool { return q.Limit > 0 && len(out) >= q.Limit }

	for _, p := range recalled {
		if full() {
			return out
		}
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	for _, p := range scanned {
		if full() {
			return out
		}
		if seen[p.ID] || !InCategory(p, q.Category) || !match(p, q.Terms) {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func (s *SupabaseSource) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var rows []supabaseProduct
	_, err := s.client.From(s.table).Select(productSelect, "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, errors.Wrapf(err, "supabase load product %s", id)
	}
	if len(rows) == 0 {
		return nil, ErrProductNotFound
	}
	product := rows[0].toProduct()
	return &product, ctx.Err()
}

func (s *SupabaseSource) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	builder := s.client.From(s.table).Select(productSelect, "", false)
	if filter.Category != "" {
		builder = builder.Ilike("category", sanitizeTerm(filter.Category))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit, "")
	}

	var rows []supabaseProduct
	if _, err := builder.ExecuteTo(&rows); err != nil {
		return nil, errors.Wrap(err, "supabase list products")
	}
	return toProducts(rows), ctx.Err()
}

func toProducts(rows []supabaseProduct) []models.Product {
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}
	return products
}

// recallFilter renders the PostgREST or=() body for terms: case-insensitive
// substring matches on the text columns.
func recallFilter(terms []string) string {
	parts := make([]string, 0, len(terms)*3)
	for _, term := range terms {
		term = sanitizeTerm(term)
		if term == "" {
			continue
		}
		for _, column := range []string{"name", "description", "category"} {
			parts = append(parts, fmt.Sprintf(`%s.ilike."*%s*"`, column, term))
		}
	}
	return strings.Join(parts, ",")
}

// sanitizeTerm drops characters that would break out of a PostgREST filter value.
func sanitizeTerm(term string) string {
	term = strings.Map(func(r rune) rune {
		switch r {
		case '"', ',', '(', ')', '{', '}', '*', '\\':
			return -1
		}
		return r
	}, term)
	return strings.ToLower(strings.TrimSpace(term))
}
