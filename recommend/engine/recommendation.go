package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"stylematch/recommend/analysis"
	"stylematch/recommend/cart"
	"stylematch/recommend/classify"
	"stylematch/recommend/config"
	"stylematch/recommend/constraint"
	"stylematch/recommend/dedup"
	"stylematch/recommend/models"
	"stylematch/recommend/profile"
	"stylematch/recommend/search"
	"stylematch/recommend/session"
)

// categoryTerms seed every catalog query so a category is searched even when
// the profile names no item for it.
var categoryTerms = map[models.Category][]string{
	models.CategoryTop:       {"shirt", "top", "tee", "blouse", "sweater"},
	models.CategoryBottom:    {"trousers", "pants", "jeans", "skirt", "chinos"},
	models.CategoryOuterwear: {"jacket", "blazer", "coat"},
	models.CategoryFootwear:  {"shoes", "sneakers", "loafers", "boots"},
	models.CategoryAccessory: {"belt", "bag", "tie", "scarf", "watch"},
}

type requestIDKey struct{}

// WithRequestID tags ctx with the id GetRecommendations logs and returns.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// requestIDFrom returns the id carried by ctx or a fresh one.
func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

type RecommendationEngine struct {
	catalog      search.Catalog
	analyzer     analysis.Analyzer // nil disables image analysis
	classifier   *classify.Classifier
	deduplicator *dedup.Deduplicator
	scorer       *Scorer
	cart         cart.Creator
	config       *config.Config
}

func NewRecommendationEngine(
	catalog search.Catalog,
	analyzer analysis.Analyzer,
	classifier *classify.Classifier,
	deduplicator *dedup.Deduplicator,
	cartCreator cart.Creator,
	config *config.Config,
) *RecommendationEngine {
	return &RecommendationEngine{
		catalog:      catalog,
		analyzer:     analyzer,
		classifier:   classifier,
		deduplicator: deduplicator,
		scorer:       NewScorer(&config.Recommend),
		cart:         cartCreator,
		config:       config,
	}
}

// GetRecommendations 主推荐方法. The session's last sets are replaced with the
// result; persisting the session is up to the caller.
func (re *RecommendationEngine) GetRecommendations(
	ctx context.Context,
	sess *session.Session,
	req *models.RecommendationRequest,
) (*models.RecommendationResponse, error) {

	requestID := requestIDFrom(ctx)
	startTime := time.Now()

	c, err := constraint.Normalize(req.Constraints)
	if err != nil {
		return nil, err
	}

	numSets := req.NumSets
	if numSets <= 0 {
		numSets = re.config.Recommend.DefaultSets
	}
	if numSets > re.config.Recommend.MaxSets {
		numSets = re.config.Recommend.MaxSets
	}

	slog.Info("Processing recommendation request",
		slog.Any("request_id", requestID),
		slog.Any("session_id", sess.ID),
		slog.Any("occasion", c.Occasion),
		slog.Any("budget_min", c.BudgetMin),
		slog.Any("budget_max", c.BudgetMax))

	var warnings []string
	styleProfile, warning := re.resolveProfile(ctx, req, c)
	if warning != "" {
		warnings = append(warnings, warning)
	}

	outfit := re.scorer.OutfitFor(c.Occasion)
	categories := append(append([]models.Category{}, outfit.Required...), outfit.Optional...)

	candidates, failed, err := re.fetchCandidates(ctx, styleProfile, c, categories)
	if err != nil {
		return nil, err
	}
	candidates = re.deduplicator.Deduplicate(candidates)

	scored, unresolved := re.scoreCandidates(candidates, styleProfile, c)

	result, err := Assemble(AssemblyRequest{
		ScoredByCategory: scored,
		Constraints:      c,
		Required:         outfit.Required,
		Optional:         outfit.Optional,
		NumSets:          numSets,
		Allocation:       re.scorer.Allocation(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble outfits: %w", err)
	}

	shortfalls := mergeShortfalls(result.Shortfalls, failed, scored)
	if len(result.Sets) == 0 && len(shortfalls) == 0 {
		shortfalls = append(shortfalls, models.Shortfall{Reason: models.ReasonCandidatesExhausted})
	}

	formatted := Format(result.Sets)
	sess.Replace(formatted)

	response := &models.RecommendationResponse{
		RequestID:              requestID,
		SessionID:              sess.ID,
		Sets:                   formatted,
		UnresolvedProductCount: unresolved,
		Shortfalls:             shortfalls,
		Warnings:               warnings,
		Profile:                styleProfile,
		Constraints:            c,
		Timestamp:              time.Now(),
		Duration:               time.Since(startTime).String(),
	}

	slog.Info("Completed recommendation request",
		slog.Any("request_id", requestID),
		slog.Any("sets", len(formatted)),
		slog.Any("shortfalls", len(shortfalls)),
		slog.Any("unresolved", unresolved),
		slog.Any("duration", response.Duration))

	return response, nil
}

// resolveProfile prefers a supplied analysis text, then image analysis, then
// the free-text hint. Analysis failures degrade to an empty profile.
func (re *RecommendationEngine) resolveProfile(
	ctx context.Context,
	req *models.RecommendationRequest,
	c models.Constraints,
) (models.StyleProfile, string) {

	if req.StyleProfileRaw != "" {
		return profile.Parse(req.StyleProfileRaw), ""
	}

	if len(req.Images) > 0 {
		if re.analyzer == nil {
			return profile.Parse(req.Hint), "image analysis is not configured; images were ignored"
		}

		actx, cancel := context.WithTimeout(ctx, re.config.Upstream.AnalysisTimeout)
		defer cancel()

		text, err := re.analyzer.Analyze(actx, analysis.Request{
			Images:      req.Images,
			Hint:        req.Hint,
			Interests:   req.Interests,
			Constraints: c,
		})
		if err != nil {
			err = fmt.Errorf("%w: style analysis: %v", models.ErrUpstreamUnavailable, err)
			slog.Warn("Style analysis failed", slog.Any("error", err))
			return profile.Empty(), err.Error()
		}
		return profile.Parse(text), ""
	}

	return profile.Parse(req.Hint), ""
}

// fetchCandidates runs one catalog query per category. A failed query is
// returned in failed; only when every query fails is the error returned.
func (re *RecommendationEngine) fetchCandidates(
	ctx context.Context,
	p models.StyleProfile,
	c models.Constraints,
	categories []models.Category,
) ([]models.RawProduct, []models.Category, error) {

	hints := re.hintsByCategory(p)

	var (
		all     []models.RawProduct
		failed  []models.Category
		lastErr error
	)
	for _, cat := range categories {
		terms := append(append([]string{}, hints[cat]...), categoryTerms[cat]...)
		terms = append(terms, c.PreferredColors...)

		qctx, cancel := context.WithTimeout(ctx, re.config.Upstream.CatalogTimeout)
		products, err := re.catalog.SearchProducts(qctx, search.Query{
			Terms:    terms,
			Category: cat,
			Limit:    re.config.Recommend.CandidateLimit,
		})
		cancel()

		if err != nil {
			slog.Error("Catalog query failed",
				slog.Any("catalog", re.catalog.Name()),
				slog.Any("category", cat),
				slog.Any("error", err))
			failed = append(failed, cat)
			lastErr = err
			continue
		}
		all = append(all, products...)
	}

	if len(categories) > 0 && len(failed) == len(categories) {
		return nil, nil, fmt.Errorf("%w: catalog %s: %v", models.ErrUpstreamUnavailable, re.catalog.Name(), lastErr)
	}
	return all, failed, nil
}

// hintsByCategory files each profile item hint under the category the
// classifier gives it.
func (re *RecommendationEngine) hintsByCategory(p models.StyleProfile) map[models.Category][]string {
	out := map[models.Category][]string{}
	for _, hint := range p.ItemHints {
		cat := re.classifier.Classify(models.Product{Title: hint})
		if cat != models.CategoryUnresolved {
			out[cat] = append(out[cat], hint)
		}
	}
	return out
}

// scoreCandidates classifies, filters and scores raw products. Unresolved
// products are counted, never assembled.
func (re *RecommendationEngine) scoreCandidates(
	candidates []models.RawProduct,
	p models.StyleProfile,
	c models.Constraints,
) (map[models.Category][]models.ScoredProduct, int) {

	scored := map[models.Category][]models.ScoredProduct{}
	unresolved := 0

	for _, raw := range candidates {
		product := toProduct(raw)
		product.Category = re.classifier.Classify(product)
		if product.Category == models.CategoryUnresolved {
			unresolved++
			continue
		}
		if !product.Available {
			continue
		}
		if product.Brand != "" && constraint.Contains(c.ExcludedBrands, product.Brand) {
			continue
		}
		if math.IsNaN(product.Price) || math.IsInf(product.Price, 0) || product.Price < 0 {
			slog.Warn("Skipping product with invalid price", slog.Any("id", product.ID), slog.Any("price", product.Price))
			continue
		}

		score, matched := re.scorer.Score(product, p, c)
		scored[product.Category] = append(scored[product.Category], models.ScoredProduct{
			Product:           product,
			Score:             score,
			MatchedAttributes: matched,
		})
	}

	for cat := range scored {
		list := scored[cat]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Score != list[j].Score {
				return list[i].Score > list[j].Score
			}
			if list[i].Price != list[j].Price {
				return list[i].Price < list[j].Price
			}
			return list[i].ID < list[j].ID
		})
	}
	return scored, unresolved
}

// toProduct fills defaults for fields the catalog left out: a missing brand is
// unknown and missing availability counts as unavailable.
func toProduct(raw models.RawProduct) models.Product {
	p := models.Product{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Price:       raw.Price,
		Currency:    raw.Currency,
		ImageURL:    raw.ImageURL,
		URL:         raw.URL,
		Tags:        raw.Tags,
	}
	if raw.Brand != nil {
		p.Brand = *raw.Brand
	}
	if raw.Available != nil {
		p.Available = *raw.Available
	}
	return p
}

// mergeShortfalls reports a failed catalog query as upstream_unavailable when it
// left its category empty, in place of the assembler's no_candidates.
func mergeShortfalls(
	assembled []models.Shortfall,
	failed []models.Category,
	scored map[models.Category][]models.ScoredProduct,
) []models.Shortfall {

	upstream := map[models.Category]bool{}
	for _, cat := range failed {
		if len(scored[cat]) == 0 {
			upstream[cat] = true
		}
	}

	out := make([]models.Shortfall, 0, len(assembled)+len(upstream))
	for _, cat := range models.Categories {
		if upstream[cat] {
			out = append(out, models.Shortfall{Category: cat, Reason: models.ReasonUpstreamUnavailable})
		}
	}
	for _, sf := range assembled {
		if sf.Reason == models.ReasonNoCandidates && upstream[sf.Category] {
			continue
		}
		out = append(out, sf)
	}
	return out
}

// QuickPurchase sends every product of the ranked set to the cart at quantity 1.
func (re *RecommendationEngine) QuickPurchase(
	ctx context.Context,
	sess *session.Session,
	rank int,
) (*models.PurchaseResponse, error) {

	set, err := sess.Set(rank)
	if err != nil {
		return nil, err
	}

	lines := cart.Lines(set)
	checkoutURL, err := re.cart.CreateCart(ctx, lines)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: cart: %v", models.ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	slog.Info("Quick purchase", slog.Any("session_id", sess.ID), slog.Any("rank", rank), slog.Any("lines", len(lines)))
	return &models.PurchaseResponse{
		SessionID:   sess.ID,
		Rank:        rank,
		Lines:       lines,
		CheckoutURL: checkoutURL,
	}, nil
}

// Status reports the health of the engine's upstreams.
func (re *RecommendationEngine) Status(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"catalog":          re.catalog.Name(),
		"analysis_enabled": re.analyzer != nil,
		"default_num_sets": re.config.Recommend.DefaultSets,
		"candidate_limit":  re.config.Recommend.CandidateLimit,
	}
	if err := re.catalog.Health(ctx); err != nil {
		status["catalog_status"] = "unavailable"
		status["catalog_error"] = err.Error()
	} else {
		status["catalog_status"] = "ok"
	}
	return status
}
