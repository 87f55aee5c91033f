package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/typesense/typesense-go/typesense"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"stylematch/recommend/models"
)

// Indexer maintains the products collection that TypesenseCatalog reads.
type Indexer struct {
	client *typesense.Client
}

func NewIndexer(client *typesense.Client) *Indexer {
	return &Indexer{client: client}
}

// ProductSchema is the collection layout for catalog products.
func ProductSchema(name string) *api.CollectionSchema {
	fields := []api.Field{
		{Name: "title", Type: "string", Infix: pointer.True()},
		{Name: "description", Type: "string"},
		{Name: "tags", Type: "string[]", Facet: pointer.True()},
		{Name: "price", Type: "float", Sort: pointer.True()},
		{Name: "currency", Type: "string", Index: pointer.False(), Optional: pointer.True()},
		{Name: "image_url", Type: "string", Index: pointer.False(), Optional: pointer.True()},
		{Name: "url", Type: "string", Index: pointer.False(), Optional: pointer.True()},
		{Name: "brand", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
		{Name: "available", Type: "bool", Optional: pointer.True()},
	}
	return &api.CollectionSchema{
		Name:   name,
		Fields: fields,
	}
}

// DeleteIndex drops the collection. A missing collection is not an error.
func (ix *Indexer) DeleteIndex(ctx context.Context, name string) error {
	_, err := ix.client.Collection(name).Delete(ctx)
	if err == nil {
		return nil
	}
	var tsErr *typesense.HTTPError
	if errors.As(err, &tsErr) && tsErr.Status == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("failed to delete index %s: %w", name, describeHTTPError(err))
}

func (ix *Indexer) CreateIndex(ctx context.Context, schema *api.CollectionSchema) error {
	resp, err := ix.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", schema.Name, describeHTTPError(err))
	}
	slog.Info("CreateIndex", slog.Any("collection", resp.Name), slog.Any("fields", len(resp.Fields)))
	return nil
}

// ImportProducts upserts products as JSONL and fails if any line was rejected.
func (ix *Indexer) ImportProducts(ctx context.Context, name string, products []models.RawProduct) error {
	var body strings.Builder
	enc := json.NewEncoder(&body)
	for _, p := range products {
		if err := enc.Encode(newDocument(p)); err != nil {
			return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
		}
	}

	result, err := ix.client.Collection(name).Documents().ImportJsonl(ctx, strings.NewReader(body.String()), &api.ImportDocumentsParams{
		Action: pointer.String("upsert"),
	})
	if err != nil {
		return fmt.Errorf("failed to import into %s: %w", name, describeHTTPError(err))
	}
	defer result.Close()

	all, err := io.ReadAll(result)
	if err != nil {
		return fmt.Errorf("failed to read import result: %w", err)
	}

	failed := 0
	for _, line := range strings.Split(strings.TrimSpace(string(all)), "\n") {
		var status struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &status); err != nil || !status.Success {
			failed++
			slog.Error("Import line rejected", slog.Any("collection", name), slog.Any("line", line))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d products rejected by %s", failed, len(products), name)
	}
	slog.Info("Products imported", slog.Any("collection", name), slog.Any("count", len(products)))
	return nil
}

// Reindex drops, recreates and fills the collection.
func (ix *Indexer) Reindex(ctx context.Context, name string, products []models.RawProduct) error {
	if err := ix.DeleteIndex(ctx, name); err != nil {
		return err
	}
	if err := ix.CreateIndex(ctx, ProductSchema(name)); err != nil {
		return err
	}
	return ix.ImportProducts(ctx, name, products)
}
