// Package search is the catalog boundary. The engine only sees Catalog; the
// adapters here talk to Typesense, a local bitcask file or an in-memory fixture.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

// Query 商品检索条件. Terms are free-text phrases; Category is the slot the
// results are meant for and is only a hint to the adapter.
type Query struct {
	Terms    []string        `json:"terms"`
	Category models.Category `json:"category"`
	Limit    int             `json:"limit"`
}

// Text joins the query terms the way a keyword search box would receive them.
func (q Query) Text() string {
	return strings.Join(q.Terms, " ")
}

// Catalog is implemented by every product source.
type Catalog interface {
	SearchProducts(ctx context.Context, q Query) ([]models.RawProduct, error)
	Health(ctx context.Context) error
	Name() string
}

// ProductURL is the storefront page of a product handle.
func ProductURL(storeDomain, handle string) string {
	return fmt.Sprintf("https://%s/products/%s", storeDomain, handle)
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "with": {}, "in": {},
	"for": {}, "of": {}, "to": {}, "on": {},
}

// matchProducts ranks products by how many distinct query tokens their text
// contains. Products without a hit are dropped unless the query is empty.
// Ties keep catalog order.
func matchProducts(products []models.RawProduct, q Query) []models.RawProduct {
	want := map[string]struct{}{}
	for _, t := range vocab.Tokenize(q.Text()) {
		if _, stop := stopwords[t]; !stop {
			want[t] = struct{}{}
		}
	}

	type hit struct {
		product models.RawProduct
		score   int
	}
	var hits []hit
	for _, p := range products {
		if len(want) == 0 {
			hits = append(hits, hit{product: p})
			continue
		}
		seen := map[string]struct{}{}
		for _, t := range vocab.Tokenize(productText(p)) {
			if _, ok := want[t]; ok {
				seen[t] = struct{}{}
			}
		}
		if len(seen) > 0 {
			hits = append(hits, hit{product: p, score: len(seen)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	limit := q.Limit
	if limit <= 0 || limit > len(hits) {
		limit = len(hits)
	}
	out := make([]models.RawProduct, 0, limit)
	for _, h := range hits[:limit] {
		out = append(out, h.product)
	}
	return out
}

func productText(p models.RawProduct) string {
	parts := []string{p.Title, p.Description}
	parts = append(parts, p.Tags...)
	if p.Brand != nil {
		parts = append(parts, *p.Brand)
	}
	return strings.Join(parts, " ")
}
