package search

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"stylematch/recommend/models"
)

//go:embed seed_products.json
var seedJSON []byte

// seedProduct mirrors the storefront export the seeding tools were built from.
type seedProduct struct {
	Handle      string   `json:"handle"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Vendor      *string  `json:"vendor"`
	ProductType string   `json:"product_type"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url"`
	Available   *bool    `json:"available"`
}

// SeedProducts returns the fixture catalog with product URLs on storeDomain.
// The product type is carried as the first tag.
func SeedProducts(storeDomain string) []models.RawProduct {
	var seeds []seedProduct
	if err := json.Unmarshal(seedJSON, &seeds); err != nil {
		panic(fmt.Sprintf("embedded seed products: %v", err))
	}

	products := make([]models.RawProduct, 0, len(seeds))
	for i, s := range seeds {
		var tags []string
		if s.ProductType != "" {
			tags = append(tags, s.ProductType)
		}
		tags = append(tags, s.Tags...)

		products = append(products, models.RawProduct{
			ID:          fmt.Sprintf("%d", 7000000001+i),
			Title:       s.Title,
			Description: s.Description,
			Price:       s.Price,
			Currency:    s.Currency,
			ImageURL:    s.ImageURL,
			URL:         ProductURL(storeDomain, s.Handle),
			Brand:       s.Vendor,
			Available:   s.Available,
			Tags:        tags,
		})
	}
	return products
}
