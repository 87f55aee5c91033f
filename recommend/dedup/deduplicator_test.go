package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/models"
)

func strPtr(s string) *string { return &s }

func ids(products []models.RawProduct) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	candidates := []models.RawProduct{
		{ID: "1", Title: "Navy Blazer", Brand: strPtr("Halden"), Price: 189},
		{ID: "2", Title: "White Shirt", Price: 59},
		{ID: "1", Title: "Navy Blazer", Brand: strPtr("Halden"), Price: 189},
		{ID: "3", Title: "navy   blazer", Brand: strPtr("HALDEN"), Price: 189},
		{ID: "4", Title: "Navy Blazer", Brand: strPtr("Halden"), Price: 149},
	}

	assert.Equal(t, []string{"1", "2", "4"}, ids(NewDeduplicator(ByContent).Deduplicate(candidates)))
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(NewDeduplicator(ByID).Deduplicate(candidates)))
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, ByID, ParseStrategy("ID"))
	assert.Equal(t, ByContent, ParseStrategy(" content "))
	assert.Equal(t, ByContent, ParseStrategy(""))
}

func TestContentHashIgnoresMissingBrand(t *testing.T) {
	a := models.RawProduct{Title: "Belt", Price: 45}
	b := models.RawProduct{Title: "Belt", Price: 45, Brand: strPtr("")}
	assert.Equal(t, ContentHash(a), ContentHash(b))
}

func TestDeduplicatePrefersInStockTwin(t *testing.T) {
	soldOut, inStock := false, true
	candidates := []models.RawProduct{
		{ID: "sold-out", Title: "Navy Oxford Shoes", Brand: strPtr("Acme"), Price: 120, Available: &soldOut},
		{ID: "belt", Title: "Leather Belt", Price: 45, Available: &inStock},
		{ID: "in-stock", Title: "Navy Oxford Shoes", Brand: strPtr("Acme"), Price: 120, Available: &inStock},
		{ID: "restock", Title: "Navy Oxford Shoes", Brand: strPtr("Acme"), Price: 120, Available: &inStock},
	}

	out := NewDeduplicator(ByContent).Deduplicate(candidates)
	assert.Equal(t, []string{"in-stock", "belt"}, ids(out))
	assert.True(t, *out[0].Available)

	// a repeated id that is back in stock also replaces the sold-out copy
	out = NewDeduplicator(ByID).Deduplicate([]models.RawProduct{
		{ID: "1", Title: "Tee", Price: 20, Available: &soldOut},
		{ID: "1", Title: "Tee", Price: 20, Available: &inStock},
	})
	require.Len(t, out, 1)
	assert.True(t, *out[0].Available)

	// neither twin in stock: the first is kept
	out = NewDeduplicator(ByContent).Deduplicate([]models.RawProduct{
		{ID: "a", Title: "Tee", Price: 20, Available: &soldOut},
		{ID: "b", Title: "Tee", Price: 20},
	})
	assert.Equal(t, []string{"a"}, ids(out))
}
