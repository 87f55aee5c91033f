package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"stylematch/recommend/config"
	"stylematch/recommend/search"
)

// 把示例商品导入 typesense 的 products 集合
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := search.NewTypesenseClient(cfg.Typesense.Host, cfg.Typesense.APIKey)
	products := search.SeedProducts(cfg.Cart.StoreDomain)

	if err := search.NewIndexer(client).Reindex(ctx, cfg.Typesense.Collection, products); err != nil {
		slog.Error("Failed to seed typesense catalog", slog.Any("host", cfg.Typesense.Host), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Seeded typesense catalog",
		slog.Any("collection", cfg.Typesense.Collection),
		slog.Any("products", len(products)))
}
