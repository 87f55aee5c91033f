package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Redis     RedisConfig     `json:"redis"`
	Catalog   CatalogConfig   `json:"catalog"`
	Typesense TypesenseConfig `json:"typesense"`
	Bitcask   BitcaskConfig   `json:"bitcask"`
	Analysis  AnalysisConfig  `json:"analysis"`
	Upstream  UpstreamConfig  `json:"upstream"`
	Session   SessionConfig   `json:"session"`
	Cart      CartConfig      `json:"cart"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Dedup     DedupeConfig    `json:"dedup"`
	Recommend RecommendConfig `json:"recommend"`
}

type ServerConfig struct {
	Port string `json:"port"`
	Mode string `json:"mode"` // debug, release, test
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type CatalogConfig struct {
	Backend string `json:"backend"` // mock, typesense, bitcask
}

type TypesenseConfig struct {
	Host       string `json:"host"`
	APIKey     string `json:"api_key"`
	Collection string `json:"collection"`
}

type BitcaskConfig struct {
	Path string `json:"path"`
}

// AnalysisConfig points at the vision-language model. An empty APIKey disables
// image analysis; requests then rely on style_profile_raw alone.
type AnalysisConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type UpstreamConfig struct {
	AnalysisTimeout time.Duration `json:"analysis_timeout"`
	CatalogTimeout  time.Duration `json:"catalog_timeout"`
}

type SessionConfig struct {
	Backend  string        `json:"backend"` // memory, redis
	TTL      time.Duration `json:"ttl"`
	MaxItems int           `json:"max_items"`
}

type CartConfig struct {
	StoreDomain string `json:"store_domain"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

type DedupeConfig struct {
	Strategy string `json:"strategy"` // id, content
}

type RecommendConfig struct {
	DefaultSets      int                 `json:"default_sets"`
	MaxSets          int                 `json:"max_sets"`
	CandidateLimit   int                 `json:"candidate_limit"`
	ClassifierRules  string              `json:"classifier_rules"` // empty = embedded table
	Weights          ScoreWeights        `json:"weights"`
	Allocation       map[string]float64  `json:"allocation"`
	Occasions        map[string]Outfit   `json:"occasions"`
	OccasionKeywords map[string][]string `json:"occasion_keywords"`
}

// ScoreWeights must add up to 1 so a product score stays in [0,1].
type ScoreWeights struct {
	Color    float64 `json:"color"`
	StyleTag float64 `json:"style_tag"`
	Brand    float64 `json:"brand"`
	Occasion float64 `json:"occasion"`
	PriceFit float64 `json:"price_fit"`
}

// Outfit lists the categories an occasion requires and the ones it accepts when
// the budget allows.
type Outfit struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			Password: "",
			DB:       0,
		},
		Catalog: CatalogConfig{
			Backend: "mock",
		},
		Typesense: TypesenseConfig{
			Host:       "http://localhost:8108",
			APIKey:     "xyz",
			Collection: "products",
		},
		Bitcask: BitcaskConfig{
			Path: "bitcask/data/catalog.db",
		},
		Analysis: AnalysisConfig{
			BaseURL: "https://ark.cn-beijing.volces.com/api/v3",
			Model:   "doubao-1.5-vision-pro-32k",
		},
		Upstream: UpstreamConfig{
			AnalysisTimeout: 30 * time.Second,
			CatalogTimeout:  10 * time.Second,
		},
		Session: SessionConfig{
			Backend:  "memory",
			TTL:      2 * time.Hour,
			MaxItems: 10000,
		},
		Cart: CartConfig{
			StoreDomain: "your-store.myshopify.com",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Dedup: DedupeConfig{
			Strategy: "content",
		},
		Recommend: RecommendConfig{
			DefaultSets:    3,
			MaxSets:        5,
			CandidateLimit: 50,
			Weights: ScoreWeights{
				Color:    0.3,
				StyleTag: 0.3,
				Brand:    0.15,
				Occasion: 0.15,
				PriceFit: 0.10,
			},
			Allocation: map[string]float64{
				"top":       0.25,
				"bottom":    0.25,
				"outerwear": 0.30,
				"footwear":  0.30,
				"accessory": 0.10,
			},
			Occasions: map[string]Outfit{
				"business_meeting": {Required: []string{"top", "bottom", "footwear"}, Optional: []string{"outerwear", "accessory"}},
				"casual_outing":    {Required: []string{"top", "bottom"}, Optional: []string{"footwear", "outerwear", "accessory"}},
				"date_night":       {Required: []string{"top", "bottom", "footwear"}, Optional: []string{"accessory", "outerwear"}},
				"formal_event":     {Required: []string{"top", "bottom", "footwear", "outerwear"}, Optional: []string{"accessory"}},
				"workout":          {Required: []string{"top", "bottom", "footwear"}, Optional: []string{"accessory"}},
				"other":            {Required: []string{"top", "bottom"}, Optional: []string{"footwear", "outerwear", "accessory"}},
				"custom":           {Required: []string{"top", "bottom"}, Optional: []string{"footwear", "outerwear", "accessory"}},
			},
			OccasionKeywords: map[string][]string{
				"business_meeting": {"business", "office", "work", "professional", "tailored", "blazer", "oxford", "loafers", "formal", "suit", "chinos", "trousers"},
				"casual_outing":    {"casual", "everyday", "relaxed", "denim", "jeans", "sneakers", "t-shirt", "tee", "comfortable", "weekend"},
				"date_night":       {"evening", "elegant", "chic", "night", "silk", "heels", "date", "dressy", "romantic"},
				"formal_event":     {"formal", "evening", "tuxedo", "gown", "suit", "elegant", "black-tie", "satin", "dress"},
				"workout":          {"athletic", "sport", "training", "running", "gym", "performance", "leggings", "trainers", "moisture-wicking"},
			},
		},
	}
}

// Load returns DefaultConfig overlaid with environment variables. A .env file in
// the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.Catalog.Backend, "CATALOG_BACKEND")
	setString(&cfg.Typesense.Host, "TYPESENSE_HOST")
	setString(&cfg.Typesense.APIKey, "TYPESENSE_API_KEY")
	setString(&cfg.Typesense.Collection, "TYPESENSE_COLLECTION")
	setString(&cfg.Bitcask.Path, "BITCASK_PATH")
	setString(&cfg.Analysis.BaseURL, "ARK_BASE_URL")
	setString(&cfg.Analysis.APIKey, "ARK_API_KEY")
	setString(&cfg.Analysis.Model, "ARK_MODEL")
	setDuration(&cfg.Upstream.AnalysisTimeout, "ANALYSIS_TIMEOUT")
	setDuration(&cfg.Upstream.CatalogTimeout, "CATALOG_TIMEOUT")
	setString(&cfg.Session.Backend, "SESSION_BACKEND")
	setDuration(&cfg.Session.TTL, "SESSION_TTL")
	setString(&cfg.Cart.StoreDomain, "SHOPIFY_STORE_URL")
	setString(&cfg.Dedup.Strategy, "DEDUP_STRATEGY")
	setString(&cfg.Recommend.ClassifierRules, "CLASSIFIER_RULES")
	setInt(&cfg.Recommend.CandidateLimit, "CANDIDATE_LIMIT")
	setFloat(&cfg.RateLimit.RequestsPerSecond, "RATE_LIMIT_RPS")
	setInt(&cfg.RateLimit.Burst, "RATE_LIMIT_BURST")

	cfg.Cart.StoreDomain = cleanDomain(cfg.Cart.StoreDomain)
	return cfg
}

func cleanDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
