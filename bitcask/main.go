package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"stylematch/recommend/config"
	"stylematch/recommend/search"
)

// 把示例商品写入 bitcask 离线目录
func main() {
	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.Bitcask.Path), 0o755); err != nil {
		slog.Error("创建数据目录失败", slog.Any("error", err))
		os.Exit(1)
	}

	catalog, err := search.OpenBitcaskCatalog(cfg.Bitcask.Path)
	if err != nil {
		slog.Error("Failed to open bitcask catalog", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			slog.Error("Failed to close bitcask catalog", slog.Any("error", err))
		}
	}()

	products := search.SeedProducts(cfg.Cart.StoreDomain)
	if err := catalog.Store(products); err != nil {
		slog.Error("Failed to seed bitcask catalog", slog.Any("error", err))
		return
	}
	slog.Info("Seeded bitcask catalog", slog.Any("path", cfg.Bitcask.Path), slog.Any("products", len(products)))
}
