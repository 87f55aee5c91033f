package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/typesense/typesense-go/typesense"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"stylematch/recommend/models"
)

const productQueryBy = "title,tags,description"

// TypesenseCatalog searches a Typesense products collection.
type TypesenseCatalog struct {
	client     *typesense.Client
	collection string
}

func NewTypesenseCatalog(client *typesense.Client, collection string) *TypesenseCatalog {
	return &TypesenseCatalog{client: client, collection: collection}
}

// NewTypesenseClient builds a client the way every tool in this repo does.
func NewTypesenseClient(serverURL, apiKey string) *typesense.Client {
	return typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
	)
}

// SearchProducts runs one keyword search. Tokens are dropped from the right until
// at least Limit hits come back, so long hint lists still return results.
func (tc *TypesenseCatalog) SearchProducts(ctx context.Context, q Query) ([]models.RawProduct, error) {
	text := q.Text()
	if text == "" {
		text = "*"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	params := &api.SearchCollectionParams{
		Q:                   text,
		QueryBy:             productQueryBy,
		PerPage:             pointer.Int(limit),
		DropTokensThreshold: pointer.Int(limit),
	}
	result, err := tc.client.Collection(tc.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", tc.collection, describeHTTPError(err))
	}

	var products []models.RawProduct
	if result.Hits == nil {
		return products, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		p, err := decodeDocument(*hit.Document)
		if err != nil {
			slog.Warn("Skipping undecodable document", slog.Any("collection", tc.collection), slog.Any("error", err))
			continue
		}
		products = append(products, p)
	}
	slog.Debug("Typesense search", slog.Any("q", text), slog.Any("hits", len(products)))
	return products, nil
}

func (tc *TypesenseCatalog) Health(ctx context.Context) error {
	ok, err := tc.client.Health(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("typesense reports unhealthy")
	}
	return nil
}

func (tc *TypesenseCatalog) Name() string { return "typesense" }

// productDocument is the indexed shape of a product.
type productDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	Brand       *string  `json:"brand,omitempty"`
	Available   *bool    `json:"available,omitempty"`
	Tags        []string `json:"tags"`
}

func decodeDocument(doc map[string]interface{}) (models.RawProduct, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return models.RawProduct{}, err
	}
	var d productDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return models.RawProduct{}, err
	}
	return models.RawProduct(d), nil
}

func newDocument(p models.RawProduct) productDocument {
	d := productDocument(p)
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d
}

// describeHTTPError folds the body of a Typesense error response into err.
func describeHTTPError(err error) error {
	var tsErr *typesense.HTTPError
	if !errors.As(err, &tsErr) {
		return err
	}
	var body map[string]interface{}
	if jsonErr := json.Unmarshal(tsErr.Body, &body); jsonErr == nil {
		if msg, ok := body["message"].(string); ok {
			return fmt.Errorf("%w: %s", err, msg)
		}
	}
	return err
}
