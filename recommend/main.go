package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"stylematch/recommend/analysis"
	"stylematch/recommend/cart"
	"stylematch/recommend/classify"
	"stylematch/recommend/config"
	"stylematch/recommend/dedup"
	"stylematch/recommend/engine"
	"stylematch/recommend/models"
	"stylematch/recommend/search"
	"stylematch/recommend/session"
)

func main() {
	// 初始化配置
	cfg := config.Load()

	// 初始化日志
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx := context.Background()

	// 初始化组件
	rules, err := classify.LoadRulesFile(cfg.Recommend.ClassifierRules)
	if err != nil {
		slog.Error("Failed to load classifier rules", slog.Any("path", cfg.Recommend.ClassifierRules), slog.Any("error", err))
		os.Exit(1)
	}
	classifier, err := classify.New(rules)
	if err != nil {
		slog.Error("Failed to create classifier", slog.Any("error", err))
		os.Exit(1)
	}
	defer classifier.Close()

	catalog, closeCatalog := newCatalog(cfg)
	defer closeCatalog()

	store := newSessionStore(ctx, cfg)

	var analyzer analysis.Analyzer
	if cfg.Analysis.APIKey != "" {
		ark, err := analysis.NewArkAnalyzer(ctx, cfg.Analysis)
		if err != nil {
			slog.Error("Image analysis disabled", slog.Any("error", err))
		} else {
			analyzer = ark
		}
	} else {
		slog.Info("ARK_API_KEY not set, image analysis disabled")
	}

	// 创建推荐引擎
	recommendEngine := engine.NewRecommendationEngine(
		catalog,
		analyzer,
		classifier,
		dedup.NewDeduplicator(dedup.ParseStrategy(cfg.Dedup.Strategy)),
		cart.NewPermalinkCreator(cfg.Cart.StoreDomain),
		cfg,
	)

	// 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	limiter := NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	stop := make(chan struct{})
	defer close(stop)
	go limiter.Run(stop)

	r := setupRouter(recommendEngine, store, cfg, limiter, newAccessLogger())

	slog.Info("Starting server",
		slog.Any("port", cfg.Server.Port),
		slog.Any("catalog", catalog.Name()),
		slog.Any("session_store", store.Name()))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		slog.Error("Failed to start server", slog.Any("error", err))
	}
}

// setupRouter 注册中间件和路由
func setupRouter(
	re *engine.RecommendationEngine,
	store session.Store,
	cfg *config.Config,
	limiter *RateLimiter,
	logger *logrus.Logger,
) *gin.Engine {

	r := gin.New()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(accessLogMiddleware(logger))
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    map[string]string{"status": "healthy"},
			Message: "Service is running",
		})
	})

	// API 路由
	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		// 获取推荐
		api.POST("/recommendations", handleGetRecommendations(re, store))

		// 快速购买
		api.POST("/sessions/:session_id/purchase", handleQuickPurchase(re, store))

		// 获取会话
		api.GET("/sessions/:session_id", handleGetSession(store))

		// 解析风格分析文本
		api.POST("/profile/parse", handleParseProfile())

		// 场合列表
		api.GET("/occasions", handleListOccasions(cfg))

		// 系统状态
		api.GET("/status", handleSystemStatus(re, store))
	}

	return r
}

// newCatalog picks the configured catalog backend. Unusable backends fall back
// to the in-memory fixture catalog.
func newCatalog(cfg *config.Config) (search.Catalog, func()) {
	switch cfg.Catalog.Backend {
	case "typesense":
		client := search.NewTypesenseClient(cfg.Typesense.Host, cfg.Typesense.APIKey)
		return search.NewTypesenseCatalog(client, cfg.Typesense.Collection), func() {}
	case "bitcask":
		bc, err := search.OpenBitcaskCatalog(cfg.Bitcask.Path)
		if err != nil {
			slog.Error("Bitcask catalog unavailable (using mock catalog)", slog.Any("path", cfg.Bitcask.Path), slog.Any("error", err))
			break
		}
		return bc, func() {
			if err := bc.Close(); err != nil {
				slog.Error("Failed to close bitcask catalog", slog.Any("error", err))
			}
		}
	}
	return search.NewMockCatalog(search.SeedProducts(cfg.Cart.StoreDomain)), func() {}
}

// newSessionStore 初始化会话存储. Redis is used when configured and reachable.
func newSessionStore(ctx context.Context, cfg *config.Config) session.Store {
	if cfg.Session.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// 测试 Redis 连接
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Redis connection failed (using memory sessions)", slog.Any("error", err))
		} else {
			slog.Info("Redis connected successfully")
			return session.NewRedisStore(rdb, cfg.Session.TTL)
		}
	}
	return session.NewMemoryStore(cfg.Session.MaxItems, cfg.Session.TTL)
}
