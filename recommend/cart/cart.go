// Package cart hands a chosen outfit set to the storefront checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stylematch/recommend/models"
)

// Creator turns cart lines into a checkout URL.
type Creator interface {
	CreateCart(ctx context.Context, lines []models.CartLine) (string, error)
}

// PermalinkCreator builds storefront cart permalinks of the form
// https://<store>/cart/<id>:<qty>,<id>:<qty>. No API call is made.
type PermalinkCreator struct {
	storeDomain string
}

func NewPermalinkCreator(storeDomain string) *PermalinkCreator {
	return &PermalinkCreator{storeDomain: storeDomain}
}

func (pc *PermalinkCreator) CreateCart(ctx context.Context, lines []models.CartLine) (string, error) {
	if len(lines) == 0 {
		return "", errors.New("cart has no lines")
	}

	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		id := variantID(l.ProductID)
		if id == "" {
			return "", fmt.Errorf("invalid product id %q", l.ProductID)
		}
		qty := l.Quantity
		if qty <= 0 {
			qty = 1
		}
		parts = append(parts, fmt.Sprintf("%s:%d", id, qty))
	}
	return fmt.Sprintf("https://%s/cart/%s", pc.storeDomain, strings.Join(parts, ",")), nil
}

// variantID strips a global id ("gid://shopify/ProductVariant/123") down to its
// numeric tail.
func variantID(productID string) string {
	id := strings.TrimSpace(productID)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// Lines lists every product of a set once, at quantity 1.
func Lines(set models.FormattedSet) []models.CartLine {
	lines := make([]models.CartLine, 0, len(set.Items))
	for _, id := range set.ProductIDs() {
		lines = append(lines, models.CartLine{ProductID: id, Quantity: 1})
	}
	return lines
}
