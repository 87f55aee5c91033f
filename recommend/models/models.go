package models

import (
	"time"
)

// Category 服装品类
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryOuterwear Category = "outerwear"
	CategoryFootwear  Category = "footwear"
	CategoryAccessory Category = "accessory"
	// CategoryUnresolved marks products no classifier rule matched.
	CategoryUnresolved Category = ""
)

// Categories is the canonical display order.
var Categories = []Category{
	CategoryOuterwear,
	CategoryTop,
	CategoryBottom,
	CategoryFootwear,
	CategoryAccessory,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return CategoryUnresolved, false
}

// StyleProfile 风格画像. Sets are kept sorted; StyleTags keep salience order.
type StyleProfile struct {
	DominantColors []string `json:"dominant_colors"`
	StyleTags      []string `json:"style_tags"`
	Silhouettes    []string `json:"silhouettes"`
	Occasions      []string `json:"occasions,omitempty"`
	ItemHints      []string `json:"item_hints,omitempty"`
	Confidence     float64  `json:"confidence"`
}

// ConstraintInput is the user-supplied form of Constraints before normalization.
type ConstraintInput struct {
	Occasion        string   `json:"occasion"`
	Custom          bool     `json:"custom"`
	BudgetMin       float64  `json:"budget_min"`
	BudgetMax       float64  `json:"budget_max"`
	PreferredColors []string `json:"preferred_colors"`
	PreferredBrands []string `json:"preferred_brands"`
	ExcludedBrands  []string `json:"excluded_brands"`
	Notes           string   `json:"notes"`
}

// Constraints 约束条件（规范化后）
type Constraints struct {
	Occasion        string   `json:"occasion"`
	CustomOccasion  string   `json:"custom_occasion,omitempty"`
	BudgetMin       float64  `json:"budget_min"`
	BudgetMax       float64  `json:"budget_max"`
	PreferredColors []string `json:"preferred_colors"`
	PreferredBrands []string `json:"preferred_brands"`
	ExcludedBrands  []string `json:"excluded_brands"`
	Notes           string   `json:"notes,omitempty"`
}

// RawProduct is a catalog record as the adapter returned it. Pointer fields may
// be missing upstream.
type RawProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	Brand       *string  `json:"brand,omitempty"`
	Available   *bool    `json:"available,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Product 商品
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	Category    Category `json:"category"`
	Brand       string   `json:"brand"` // empty = unknown
	Available   bool     `json:"available"`
	Tags        []string `json:"tags,omitempty"`
}

// ScoredProduct 打分后的商品
type ScoredProduct struct {
	Product
	Score             float64  `json:"score"`
	MatchedAttributes []string `json:"matched_attributes"`
}

// OutfitSet 一套搭配
type OutfitSet struct {
	Items          map[Category]ScoredProduct `json:"items"`
	TotalCost      float64                    `json:"total_cost"`
	AggregateScore float64                    `json:"aggregate_score"`
	Rank           int                        `json:"rank"`
	BudgetExceeded bool                       `json:"budget_exceeded"`
	BudgetNote     string                     `json:"budget_note,omitempty"`
	Missing        []Category                 `json:"missing,omitempty"`
}

const (
	BudgetNoteAboveMax = "above_max"
	BudgetNoteBelowMin = "below_min"
)

// Shortfall reasons
const (
	ReasonNoCandidates        = "no_candidates"
	ReasonCandidatesExhausted = "candidates_exhausted"
	ReasonBudgetExceeded      = "budget_exceeded"
	ReasonUpstreamUnavailable = "upstream_unavailable"
)

// Shortfall reports a category (or, with empty Category, a whole set) that could
// not be filled. Rank 0 means it applies to the whole response.
type Shortfall struct {
	Category Category `json:"category,omitempty"`
	Reason   string   `json:"reason"`
	Rank     int      `json:"rank,omitempty"`
}

// FormattedItem 展示用单品
type FormattedItem struct {
	Category  Category `json:"category"`
	ProductID string   `json:"product_id"`
	Title     string   `json:"title"`
	Brand     string   `json:"brand,omitempty"`
	Price     float64  `json:"price"`
	Currency  string   `json:"currency"`
	ImageURL  string   `json:"image_url,omitempty"`
	URL       string   `json:"url,omitempty"`
	Score     float64  `json:"score"`
	Matched   []string `json:"matched_attributes,omitempty"`
}

// FormattedSet 展示用搭配
type FormattedSet struct {
	Rank             int             `json:"rank"`
	Items            []FormattedItem `json:"items"`
	TotalCost        float64         `json:"total_cost"`
	TotalCostDisplay string          `json:"total_cost_display"`
	Currency         string          `json:"currency"`
	AggregateScore   float64         `json:"aggregate_score"`
	BudgetExceeded   bool            `json:"budget_exceeded"`
	BudgetNote       string          `json:"budget_note,omitempty"`
	Missing          []Category      `json:"missing,omitempty"`
}

// ProductIDs returns the set's product ids in item order.
func (s FormattedSet) ProductIDs() []string {
	ids := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// RecommendationRequest 推荐请求
type RecommendationRequest struct {
	SessionID       string          `json:"session_id"`
	StyleProfileRaw string          `json:"style_profile_raw"`
	Images          []ImageInput    `json:"images"`
	Hint            string          `json:"hint"`
	Interests       *StyleInterests `json:"interests,omitempty"`
	Constraints     ConstraintInput `json:"constraints"`
	NumSets         int             `json:"num_sets"`
}

// StyleInterests 用户的风格偏好, e.g. collected from a linked social profile.
// Only image analysis reads it.
type StyleInterests struct {
	Styles      []string `json:"styles"`
	Colors      []string `json:"colors"`
	RecentPosts []string `json:"recent_posts"`
}

// ImageInput carries one inspiration image, base64 encoded.
type ImageInput struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// RecommendationResponse 推荐响应
type RecommendationResponse struct {
	RequestID              string         `json:"request_id"`
	SessionID              string         `json:"session_id"`
	Sets                   []FormattedSet `json:"sets"`
	UnresolvedProductCount int            `json:"unresolved_product_count"`
	Shortfalls             []Shortfall    `json:"shortfalls"`
	Warnings               []string       `json:"warnings,omitempty"`
	Profile                StyleProfile   `json:"profile"`
	Constraints            Constraints    `json:"constraints"`
	Timestamp              time.Time      `json:"timestamp"`
	Duration               string         `json:"duration"`
}

// PurchaseRequest 快速购买请求
type PurchaseRequest struct {
	Rank int `json:"rank" binding:"required,min=1"`
}

// CartLine is one product handed to the cart collaborator.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PurchaseResponse 快速购买响应
type PurchaseResponse struct {
	SessionID   string     `json:"session_id"`
	Rank        int        `json:"rank"`
	Lines       []CartLine `json:"lines"`
	CheckoutURL string     `json:"checkout_url"`
}

// APIResponse 通用API响应
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}
