package engine

import (
	"fmt"
	"math"

	"stylematch/recommend/models"
)

const defaultCurrency = "USD"

// Format turns ranked sets into their display form. It keeps rank order, lists
// items in display category order and rounds money to cents.
func Format(sets []models.OutfitSet) []models.FormattedSet {
	out := make([]models.FormattedSet, 0, len(sets))
	for _, set := range sets {
		out = append(out, formatSet(set))
	}
	return out
}

func formatSet(set models.OutfitSet) models.FormattedSet {
	fs := models.FormattedSet{
		Rank:           set.Rank,
		Items:          make([]models.FormattedItem, 0, len(set.Items)),
		TotalCost:      round2(set.TotalCost),
		Currency:       defaultCurrency,
		AggregateScore: round4(set.AggregateScore),
		BudgetExceeded: set.BudgetExceeded,
		BudgetNote:     set.BudgetNote,
		Missing:        append([]models.Category(nil), set.Missing...),
	}
	fs.TotalCostDisplay = fmt.Sprintf("%.2f", fs.TotalCost)

	currencySet := false
	for _, cat := range models.Categories {
		p, ok := set.Items[cat]
		if !ok {
			continue
		}
		if !currencySet && p.Currency != "" {
			fs.Currency = p.Currency
			currencySet = true
		}
		fs.Items = append(fs.Items, models.FormattedItem{
			Category:  cat,
			ProductID: p.ID,
			Title:     p.Title,
			Brand:     p.Brand,
			Price:     round2(p.Price),
			Currency:  orDefault(p.Currency, defaultCurrency),
			ImageURL:  p.ImageURL,
			URL:       p.URL,
			Score:     round4(p.Score),
			Matched:   append([]string(nil), p.MatchedAttributes...),
		})
	}
	return fs
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
