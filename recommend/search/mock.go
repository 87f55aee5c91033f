package search

import (
	"context"
	"log/slog"

	"stylematch/recommend/models"
)

// MockCatalog 模拟商品目录, served from memory.
type MockCatalog struct {
	products []models.RawProduct
	// Err, when set, is returned by every search. Used to simulate an outage.
	Err error
}

func NewMockCatalog(products []models.RawProduct) *MockCatalog {
	return &MockCatalog{products: products}
}

func (mc *MockCatalog) SearchProducts(ctx context.Context, q Query) ([]models.RawProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mc.Err != nil {
		return nil, mc.Err
	}

	results := matchProducts(mc.products, q)
	slog.Debug("Mock catalog search", slog.Any("query", q.Text()), slog.Any("hits", len(results)))
	return results, nil
}

func (mc *MockCatalog) Health(ctx context.Context) error {
	return mc.Err
}

func (mc *MockCatalog) Name() string { return "mock" }
