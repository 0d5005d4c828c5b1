package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/storefront-api/models"
)

type stubLister struct {
	products []models.Product
	err      error
	filters  []ListFilter
}

func (s *stubLister) ListProducts(_ context.Context, filter ListFilter) ([]models.Product, error) {
	s.filters = append(s.filters, filter)
	return s.products, s.err
}

func catalogFixture() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Wedding Guest Gown", Category: "Dresses", Tags: []string{"wedding", "bridal"}, Colors: []string{"Red"}},
		{ID: "p2", Name: "Linen Shirt", Category: "Tops", Description: "Breathable summer shirt", Colors: []string{"white"}},
		{ID: "p3", Name: "Evening Clutch", Category: "Accessories", Tags: []string{"party"}},
	}
}

func TestMatches(t *testing.T) {
	products := catalogFixture()

	assert.True(t, Matches(products[0], []string{"WEDDING"}), "tag match ignores case")
	assert.True(t, Matches(products[0], []string{"red"}), "color match ignores case")
	assert.True(t, Matches(products[1], []string{"summer"}), "description match")
	assert.True(t, Matches(products[2], []string{"access"}), "category substring")
	assert.False(t, Matches(products[1], []string{"gown", "  "}))
	assert.False(t, Matches(products[0], nil))
}

func TestInCategory(t *testing.T) {
	p := models.Product{Category: "Dresses"}
	assert.True(t, InCategory(p, ""))
	assert.True(t, InCategory(p, "dresses"))
	assert.False(t, InCategory(p, "tops"))
}

func TestFallbackSource_FiltersClientSide(t *testing.T) {
	lister := &stubLister{products: catalogFixture()}
	source := NewFallbackSource(lister, 50)

	products, err := source.FindCandidates(context.Background(), Query{Terms: []string{"red", "party"}})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p3", products[1].ID)
	require.Len(t, lister.filters, 1)
	assert.Equal(t, 50, lister.filters[0].Limit)
}

func TestFallbackSource_CategoryAndLimit(t *testing.T) {
	source := NewFallbackSource(&stubLister{products: catalogFixture()}, 0)

	products, err := source.FindCandidates(context.Background(), Query{
		Terms:    []string{"e"},
		Category: "tops",
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)

	products, err = source.FindCandidates(context.Background(), Query{Terms: []string{"e"}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestFallbackSource_PropagatesListError(t *testing.T) {
	source := NewFallbackSource(&stubLister{err: errors.New("connection refused")}, 10)

	_, err := source.FindCandidates(context.Background(), Query{Terms: []string{"red"}})
	assert.EqualError(t, err, "connection refused")
}

func TestRecallFilter(t *testing.T) {
	filter := recallFilter([]string{"Red Dress", " ", `bad"(term)`})

	assert.Equal(t,
		`name.ilike."*red dress*",description.ilike."*red dress*",category.ilike."*red dress*",`+
			`name.ilike."*badterm*",description.ilike."*badterm*",category.ilike."*badterm*"`,
		filter)
	assert.Empty(t, recallFilter(nil))
	assert.NotContains(t, recallFilter([]string{"red"}), ".cs.")
}

func TestMergeCandidatesRecallsTagsAndColorsIgnoringCase(t *testing.T) {
	recalled := []models.Product{{ID: "p2", Name: "Red Linen Shirt"}}
	scanned := []models.Product{
		{ID: "p1", Name: "Guest Gown", Colors: []string{"Red"}},
		{ID: "p2", Name: "Red Linen Shirt"},
		{ID: "p4", Name: "Veil", Tags: []string{"bridal-wear"}},
		{ID: "p5", Name: "Red Herring", Colors: []string{"navy"}},
	}

	got := mergeCandidates(recalled, scanned, Query{Terms: []string{"red", "bridal"}}, arrayMatches)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	// p5 only matches by name, which the server-side pass owns
	assert.Equal(t, []string{"p2", "p1", "p4"}, ids)

	got = mergeCandidates(recalled, scanned, Query{Terms: []string{"red", "bridal"}, Limit: 2}, arrayMatches)
	assert.Len(t, got, 2)

	got = mergeCandidates(nil, scanned, Query{Terms: []string{"bridal"}, Category: "tops"}, arrayMatches)
	assert.Empty(t, got)
}

func TestSupabaseRowNormalizesImages(t *testing.T) {
	row := supabaseProduct{ID: "p9", Name: "Silk Scarf", Images: []byte(`["a.jpg","b.jpg"]`)}

	product := row.toProduct()
	require.Len(t, product.Images, 2)
	assert.Equal(t, "a.jpg", product.PrimaryImage())

	row.ProductImages = []models.ProductImage{{URL: "joined.jpg"}}
	assert.Equal(t, "joined.jpg", row.toProduct().PrimaryImage())
}
