package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylematch/recommend/models"
)

func titles(products []models.RawProduct) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func TestSeedProducts(t *testing.T) {
	products := SeedProducts("shop.example.com")
	require.NotEmpty(t, products)

	first := products[0]
	assert.Equal(t, "Classic White Sneakers", first.Title)
	assert.Equal(t, 89.99, first.Price)
	assert.Equal(t, "https://shop.example.com/products/classic-white-sneakers", first.URL)
	assert.Equal(t, "Shoes", first.Tags[0])
	require.NotNil(t, first.Brand)
	assert.Equal(t, "FashionAI", *first.Brand)

	ids := map[string]bool{}
	for _, p := range products {
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
	}
}

func TestMockCatalogSearch(t *testing.T) {
	mc := NewMockCatalog(SeedProducts("shop.example.com"))
	ctx := context.Background()

	got, err := mc.SearchProducts(ctx, Query{Terms: []string{"loafers"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Brown Leather Loafers"}, titles(got))

	// more distinct token hits rank first
	got, err = mc.SearchProducts(ctx, Query{Terms: []string{"navy tailored trousers"}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Navy Tailored Trousers", got[0].Title)

	all, err := mc.SearchProducts(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, len(SeedProducts("shop.example.com")))

	none, err := mc.SearchProducts(ctx, Query{Terms: []string{"the and"}})
	require.NoError(t, err)
	assert.Len(t, none, len(all), "stopword-only queries behave like an empty query")
}

func TestMockCatalogOutage(t *testing.T) {
	mc := NewMockCatalog(nil)
	mc.Err = errors.New("boom")
	_, err := mc.SearchProducts(context.Background(), Query{Terms: []string{"shirt"}})
	assert.Error(t, err)
	assert.Error(t, mc.Health(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mc.Err = nil
	_, err = mc.SearchProducts(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBitcaskCatalog(t *testing.T) {
	bc, err := OpenBitcaskCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer bc.Close()

	ctx := context.Background()
	empty, err := bc.SearchProducts(ctx, Query{Terms: []string{"shirt"}})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, bc.Health(ctx))

	seed := SeedProducts("shop.example.com")
	require.NoError(t, bc.Store(seed))

	got, err := bc.SearchProducts(ctx, Query{Terms: []string{"oxford"}, Limit: 5})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"White Oxford Shirt", "Black Oxford Shoes"}, titles(got))

	all, err := bc.SearchProducts(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, seed, all)
}

func TestTypesenseCatalogSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/collections/products/documents/search":
			assert.Equal(t, "navy blazer", r.URL.Query().Get("q"))
			assert.Equal(t, productQueryBy, r.URL.Query().Get("query_by"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"found": 2, "out_of": 30, "page": 1, "search_time_ms": 1,
				"hits": []map[string]interface{}{
					{"document": map[string]interface{}{
						"id": "1", "title": "Navy Wool Blazer", "description": "Tailored", "price": 189.0,
						"currency": "USD", "brand": "Halden", "available": true, "tags": []string{"Outerwear"},
					}},
					{"document": map[string]interface{}{
						"id": "2", "title": "Navy Blazer, No Stock Field", "price": 99.5, "tags": []string{},
					}},
				},
			})
		case r.URL.Path == "/health":
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tc := NewTypesenseCatalog(NewTypesenseClient(srv.URL, "xyz"), "products")
	got, err := tc.SearchProducts(context.Background(), Query{Terms: []string{"navy", "blazer"}, Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Navy Wool Blazer", got[0].Title)
	require.NotNil(t, got[0].Brand)
	assert.Equal(t, "Halden", *got[0].Brand)
	require.NotNil(t, got[0].Available)
	assert.True(t, *got[0].Available)

	assert.Nil(t, got[1].Brand)
	assert.Nil(t, got[1].Available)

	assert.NoError(t, tc.Health(context.Background()))
}

func TestTypesenseCatalogErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found."}`))
	}))
	defer srv.Close()

	tc := NewTypesenseCatalog(NewTypesenseClient(srv.URL, "xyz"), "products")
	_, err := tc.SearchProducts(context.Background(), Query{Terms: []string{"shirt"}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Not found."), err.Error())
}

func TestDocumentRoundTrip(t *testing.T) {
	brand := "Halden"
	p := models.RawProduct{ID: "9", Title: "Belt", Price: 45, Brand: &brand}

	data, err := json.Marshal(newDocument(p))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	got, err := decodeDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, "Halden", *got.Brand)
}

// fakeTypesenseAdmin serves the collection endpoints the indexer uses. reject
// marks how many import lines fail.
func fakeTypesenseAdmin(t *testing.T, reject int) (*httptest.Server, *[]string) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/collections/products":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections":
			var schema map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&schema))
			schema["num_documents"] = 0
			schema["created_at"] = 1
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(schema)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/products/documents/import":
			assert.Equal(t, "upsert", r.URL.Query().Get("action"))
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(string(body)), "\n")
			var out []string
			for i := range lines {
				if i < reject {
					out = append(out, `{"success":false,"error":"bad document"}`)
				} else {
					out = append(out, `{"success":true}`)
				}
			}
			_, _ = w.Write([]byte(strings.Join(out, "\n")))
		default:
			http.NotFound(w, r)
		}
	}))
	return srv, &calls
}

func TestIndexerReindex(t *testing.T) {
	srv, calls := fakeTypesenseAdmin(t, 0)
	defer srv.Close()

	ix := NewIndexer(NewTypesenseClient(srv.URL, "xyz"))
	err := ix.Reindex(context.Background(), "products", SeedProducts("shop.example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DELETE /collections/products",
		"POST /collections",
		"POST /collections/products/documents/import",
	}, *calls)
}

func TestIndexerImportCountsRejectedLines(t *testing.T) {
	srv, _ := fakeTypesenseAdmin(t, 2)
	defer srv.Close()

	ix := NewIndexer(NewTypesenseClient(srv.URL, "xyz"))
	err := ix.ImportProducts(context.Background(), "products", SeedProducts("shop.example.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 30 products rejected")
}

func TestProductSchema(t *testing.T) {
	schema := ProductSchema("products")
	assert.Equal(t, "products", schema.Name)

	names := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "title")
	assert.Contains(t, names, "tags")
	assert.Contains(t, names, "price")
}
