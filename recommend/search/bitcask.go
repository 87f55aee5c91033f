package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.mills.io/bitcask/v2"

	"stylematch/recommend/models"
)

const (
	bitcaskIndexKey     = "catalog:index"
	bitcaskProductKeyFn = "product:%s"
)

// BitcaskCatalog is an offline catalog kept in a bitcask file. The product ids
// are listed under a single index key; each product is stored as JSON.
type BitcaskCatalog struct {
	db kv
}

// kv is the slice of the bitcask API the catalog needs.
type kv struct {
	Get   func(key []byte) ([]byte, error)
	Put   func(key, value []byte) error
	Close func() error
}

func OpenBitcaskCatalog(path string) (*BitcaskCatalog, error) {
	db, err := bitcask.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bitcask catalog %s: %w", path, err)
	}
	return &BitcaskCatalog{db: kv{
		Get:   func(key []byte) ([]byte, error) { return db.Get(key) },
		Put:   func(key, value []byte) error { return db.Put(key, value) },
		Close: db.Close,
	}}, nil
}

// Store replaces the catalog with products.
func (bc *BitcaskCatalog) Store(products []models.RawProduct) error {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal product %s: %w", p.ID, err)
		}
		if err := bc.db.Put([]byte(fmt.Sprintf(bitcaskProductKeyFn, p.ID)), data); err != nil {
			return fmt.Errorf("failed to put product %s: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
	}

	index, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog index: %w", err)
	}
	if err := bc.db.Put([]byte(bitcaskIndexKey), index); err != nil {
		return fmt.Errorf("failed to put catalog index: %w", err)
	}

	slog.Info("Bitcask catalog stored", slog.Any("products", len(ids)))
	return nil
}

func (bc *BitcaskCatalog) load() ([]models.RawProduct, error) {
	raw, err := bc.db.Get([]byte(bitcaskIndexKey))
	if errors.Is(err, bitcask.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode catalog index: %w", err)
	}

	products := make([]models.RawProduct, 0, len(ids))
	for _, id := range ids {
		val, err := bc.db.Get([]byte(fmt.Sprintf(bitcaskProductKeyFn, id)))
		if err != nil {
			slog.Warn("Catalog index points at missing product", slog.Any("id", id), slog.Any("error", err))
			continue
		}
		var p models.RawProduct
		if err := json.Unmarshal(val, &p); err != nil {
			slog.Warn("Skipping undecodable product", slog.Any("id", id), slog.Any("error", err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (bc *BitcaskCatalog) SearchProducts(ctx context.Context, q Query) ([]models.RawProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	products, err := bc.load()
	if err != nil {
		return nil, err
	}
	return matchProducts(products, q), nil
}

func (bc *BitcaskCatalog) Health(ctx context.Context) error {
	_, err := bc.db.Get([]byte(bitcaskIndexKey))
	if err != nil && !errors.Is(err, bitcask.ErrKeyNotFound) {
		return err
	}
	return nil
}

func (bc *BitcaskCatalog) Name() string { return "bitcask" }

func (bc *BitcaskCatalog) Close() error {
	return bc.db.Close()
}
