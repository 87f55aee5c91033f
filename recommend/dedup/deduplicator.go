// Package dedup removes duplicate catalog candidates before classification.
// Per-category searches overlap, and storefronts often list the same garment
// under several product ids.
package dedup

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"strings"

	"stylematch/recommend/models"
)

// Strategy 去重策略
type Strategy int

const (
	// ByID drops repeated product ids only.
	ByID Strategy = iota
	// ByContent also drops listings whose ContentHash was already seen.
	ByContent
)

// ParseStrategy maps "id" to ByID; anything else is ByContent.
func ParseStrategy(s string) Strategy {
	if strings.EqualFold(strings.TrimSpace(s), "id") {
		return ByID
	}
	return ByContent
}

type Deduplicator struct {
	strategy Strategy
}

func NewDeduplicator(strategy Strategy) *Deduplicator {
	return &Deduplicator{strategy: strategy}
}

// Deduplicate keeps the first occurrence of every product and preserves order.
// When a sold-out listing collides with an in-stock one, the in-stock listing
// takes its place.
func (d *Deduplicator) Deduplicate(candidates []models.RawProduct) []models.RawProduct {
	byID := make(map[string]int, len(candidates))
	byContent := make(map[string]int, len(candidates))

	out := make([]models.RawProduct, 0, len(candidates))
	for _, p := range candidates {
		idx, dup := d.lookup(p, byID, byContent)
		if !dup {
			byID[p.ID] = len(out)
			if d.strategy == ByContent {
				byContent[ContentHash(p)] = len(out)
			}
			out = append(out, p)
			continue
		}

		// 重复商品保留有货的一条
		if !isAvailable(out[idx]) && isAvailable(p) {
			out[idx] = p
			byID[p.ID] = idx
		}
	}

	if len(out) != len(candidates) {
		slog.Info("Deduplication complete", slog.Any("before", len(candidates)), slog.Any("after", len(out)))
	}
	return out
}

// lookup returns the index of the kept listing p duplicates.
func (d *Deduplicator) lookup(p models.RawProduct, byID, byContent map[string]int) (int, bool) {
	// 基本ID去重
	if idx, ok := byID[p.ID]; ok {
		return idx, true
	}
	if d.strategy == ByID {
		return 0, false
	}
	idx, ok := byContent[ContentHash(p)]
	return idx, ok
}

func isAvailable(p models.RawProduct) bool {
	return p.Available != nil && *p.Available
}

// ContentHash identifies a listing by normalized title, brand and price.
func ContentHash(p models.RawProduct) string {
	brand := ""
	if p.Brand != nil {
		brand = *p.Brand
	}
	content := fmt.Sprintf("%s|%s|%.2f",
		strings.ToLower(strings.Join(strings.Fields(p.Title), " ")),
		strings.ToLower(strings.TrimSpace(brand)),
		p.Price)

	hash := md5.Sum([]byte(content))
	return fmt.Sprintf("%x", hash)
}
