package engine

import (
	"math"
	"sort"
	"strings"

	"stylematch/recommend/config"
	"stylematch/recommend/constraint"
	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

// Scorer rates a product against a style profile and constraints. It holds only
// read-only configuration.
type Scorer struct {
	weights          config.ScoreWeights
	allocation       map[models.Category]float64
	occasions        map[string]Outfit
	occasionKeywords map[string][][]string
}

// Outfit is the category plan of an occasion.
type Outfit struct {
	Required []models.Category
	Optional []models.Category
}

func NewScorer(cfg *config.RecommendConfig) *Scorer {
	s := &Scorer{
		weights:          cfg.Weights,
		allocation:       map[models.Category]float64{},
		occasions:        map[string]Outfit{},
		occasionKeywords: map[string][][]string{},
	}
	for name, w := range cfg.Allocation {
		if cat, ok := models.ParseCategory(name); ok {
			s.allocation[cat] = w
		}
	}
	for occasion, o := range cfg.Occasions {
		s.occasions[occasion] = Outfit{
			Required: parseCategories(o.Required),
			Optional: parseCategories(o.Optional),
		}
	}
	for occasion, kws := range cfg.OccasionKeywords {
		for _, kw := range kws {
			if toks := vocab.Tokenize(kw); len(toks) > 0 {
				s.occasionKeywords[occasion] = append(s.occasionKeywords[occasion], toks)
			}
		}
	}
	return s
}

func parseCategories(names []string) []models.Category {
	out := make([]models.Category, 0, len(names))
	for _, n := range names {
		if cat, ok := models.ParseCategory(n); ok {
			out = append(out, cat)
		}
	}
	return out
}

// OutfitFor returns the category plan of an occasion, falling back to "other".
func (s *Scorer) OutfitFor(occasion string) Outfit {
	if o, ok := s.occasions[occasion]; ok {
		return o
	}
	return s.occasions[vocab.OccasionOther]
}

// Allocation is the configured category weight table.
func (s *Scorer) Allocation() map[models.Category]float64 {
	return s.allocation
}

// Shares normalizes the allocation weights over the categories of one outfit.
func Shares(allocation map[models.Category]float64, categories []models.Category) map[models.Category]float64 {
	shares := make(map[models.Category]float64, len(categories))
	var total float64
	for _, c := range categories {
		total += allocation[c]
	}
	for _, c := range categories {
		if total > 0 {
			shares[c] = allocation[c] / total
		} else {
			shares[c] = 1 / float64(len(categories))
		}
	}
	return shares
}

// Score returns a value in [0,1] and the attributes that contributed to it.
// Unavailable products always score 0.
func (s *Scorer) Score(p models.Product, profile models.StyleProfile, c models.Constraints) (float64, []string) {
	if !p.Available {
		return 0, nil
	}

	o := s.OutfitFor(c.Occasion)
	shares := Shares(s.allocation, append(append([]models.Category{}, o.Required...), o.Optional...))

	text := productText(p)
	terms := vocab.Terms(text)
	tokens := vocab.Tokenize(text)

	var matched []string
	colorScore, hits := colorSignal(terms, profile.DominantColors, c.PreferredColors)
	matched = append(matched, prefixed("color:", hits)...)

	styleScore, hits := styleSignal(terms, profile)
	matched = append(matched, prefixed("style:", hits)...)

	var brandScore float64
	if p.Brand != "" && constraint.Contains(c.PreferredBrands, p.Brand) {
		brandScore = 1
		matched = append(matched, "brand:"+strings.ToLower(p.Brand))
	}

	occasionScore, hits := s.occasionSignal(tokens, c)
	matched = append(matched, prefixed("occasion:", hits)...)

	priceScore := priceFit(p.Price, c.BudgetMin, c.BudgetMax, shares[p.Category])
	if priceScore == 1 {
		matched = append(matched, "price:in-band")
	}

	score := s.weights.Color*colorScore +
		s.weights.StyleTag*styleScore +
		s.weights.Brand*brandScore +
		s.weights.Occasion*occasionScore +
		s.weights.PriceFit*priceScore

	return math.Max(0, math.Min(1, score)), matched
}

func productText(p models.Product) string {
	parts := []string{p.Title, p.Description}
	parts = append(parts, p.Tags...)
	return strings.Join(parts, " ")
}

// colorSignal is the share of the product's colors that the user wants.
func colorSignal(terms, profileColors, preferred []string) (float64, []string) {
	want := map[string]struct{}{}
	for _, c := range profileColors {
		want[c] = struct{}{}
	}
	for _, c := range preferred {
		want[c] = struct{}{}
	}

	have := map[string]struct{}{}
	for _, t := range terms {
		if vocab.IsColor(t) {
			have[t] = struct{}{}
		}
	}
	if len(have) == 0 {
		return 0, nil
	}

	var hits []string
	for _, c := range vocab.SortedKeys(have) {
		if _, ok := want[c]; ok {
			hits = append(hits, c)
		}
	}
	return float64(len(hits)) / float64(len(have)), hits
}

// styleSignal weights the i-th profile term by 1/(i+1); style tags come before
// silhouettes.
func styleSignal(terms []string, profile models.StyleProfile) (float64, []string) {
	targets := make([]string, 0, len(profile.StyleTags)+len(profile.Silhouettes))
	seen := map[string]struct{}{}
	for _, t := range append(append([]string{}, profile.StyleTags...), profile.Silhouettes...) {
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	mentioned := map[string]struct{}{}
	for _, t := range terms {
		mentioned[t] = struct{}{}
	}

	var got, total float64
	var hits []string
	for i, t := range targets {
		w := 1 / float64(i+1)
		total += w
		if _, ok := mentioned[t]; ok {
			got += w
			hits = append(hits, t)
		}
	}
	return got / total, hits
}

func (s *Scorer) occasionSignal(tokens []string, c models.Constraints) (float64, []string) {
	keywords := s.occasionKeywords[c.Occasion]
	if c.Occasion == vocab.OccasionCustom {
		for _, t := range vocab.Tokenize(c.CustomOccasion) {
			if len(t) > 2 {
				keywords = append(keywords, []string{t})
			}
		}
	}

	var hits []string
	seen := map[string]struct{}{}
	for _, kw := range keywords {
		key := strings.Join(kw, " ")
		if _, dup := seen[key]; dup {
			continue
		}
		if vocab.ContainsTokens(tokens, kw) {
			seen[key] = struct{}{}
			hits = append(hits, key)
		}
	}
	sort.Strings(hits)
	return math.Min(1, float64(len(hits))/2), hits
}

// priceFit is 1 inside [min*share, max*share] and decays linearly with the
// distance to the band, relative to the band midpoint.
func priceFit(price, budgetMin, budgetMax, share float64) float64 {
	lo, hi := budgetMin*share, budgetMax*share
	if price >= lo && price <= hi {
		return 1
	}
	mid := (lo + hi) / 2
	if mid <= 0 {
		return 0
	}
	dist := lo - price
	if price > hi {
		dist = price - hi
	}
	return 1 - math.Min(1, dist/mid)
}

func prefixed(prefix string, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, prefix+v)
	}
	return out
}
