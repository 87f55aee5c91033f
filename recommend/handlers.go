package main

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"stylematch/recommend/config"
	"stylematch/recommend/engine"
	"stylematch/recommend/models"
	"stylematch/recommend/profile"
	"stylematch/recommend/session"
	"stylematch/recommend/vocab"
)

// errorStatus maps engine errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidConstraint):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrSetNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, message string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, models.APIResponse{Success: false, Error: message})
		return
	}
	c.JSON(status, models.APIResponse{Success: false, Error: err.Error()})
}

// 处理推荐请求
func handleGetRecommendations(re *engine.RecommendationEngine, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RecommendationRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Error:   "Invalid request format: " + err.Error(),
			})
			return
		}

		ctx := engine.WithRequestID(c.Request.Context(), c.GetString("request_id"))
		sess, err := session.Load(ctx, store, req.SessionID)
		if err != nil {
			slog.Error("Session lookup failed", slog.Any("session_id", req.SessionID), slog.Any("error", err))
			respondError(c, err, "Failed to load session")
			return
		}

		response, err := re.GetRecommendations(ctx, sess, &req)
		if err != nil {
			slog.Error("Recommendation failed", slog.Any("session_id", sess.ID), slog.Any("error", err))
			respondError(c, err, "Failed to generate recommendations")
			return
		}

		if err := store.Save(ctx, sess); err != nil {
			slog.Error("Failed to save session", slog.Any("session_id", sess.ID), slog.Any("error", err))
			response.Warnings = append(response.Warnings, "session could not be saved; quick purchase is unavailable for these sets")
		}

		c.JSON(http.StatusOK, response)
	}
}

// 快速购买
func handleQuickPurchase(re *engine.RecommendationEngine, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")

		var req models.PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Error:   "Invalid request format: " + err.Error(),
			})
			return
		}

		ctx := c.Request.Context()
		sess, err := store.Get(ctx, sessionID)
		if err != nil {
			respondError(c, err, "Failed to load session")
			return
		}

		purchase, err := re.QuickPurchase(ctx, sess, req.Rank)
		if err != nil {
			slog.Error("Quick purchase failed", slog.Any("session_id", sessionID), slog.Any("rank", req.Rank), slog.Any("error", err))
			respondError(c, err, "Failed to create cart")
			return
		}

		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    purchase,
			Message: "Cart created",
		})
	}
}

// 获取会话
func handleGetSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request.Context(), c.Param("session_id"))
		if err != nil {
			respondError(c, err, "Failed to load session")
			return
		}

		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    sess,
		})
	}
}

type parseProfileRequest struct {
	Raw string `json:"raw" binding:"required"`
}

// 解析风格分析文本
func handleParseProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req parseProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Error:   "Invalid request format: " + err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    profile.Parse(req.Raw),
		})
	}
}

type occasionInfo struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// 场合列表
func handleListOccasions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		occasions := make([]occasionInfo, 0, len(vocab.OccasionLabels))
		for key, label := range vocab.OccasionLabels {
			outfit := cfg.Recommend.Occasions[key]
			occasions = append(occasions, occasionInfo{
				Key:      key,
				Label:    label,
				Required: outfit.Required,
				Optional: outfit.Optional,
			})
		}
		sort.Slice(occasions, func(i, j int) bool { return occasions[i].Key < occasions[j].Key })

		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    occasions,
		})
	}
}

// 系统状态检查
func handleSystemStatus(re *engine.RecommendationEngine, store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		status := re.Status(ctx)
		status["timestamp"] = time.Now()
		status["service"] = "stylematch/recommend"
		status["version"] = "1.0.0"
		status["session_store"] = store.Name()

		if err := store.Ping(ctx); err != nil {
			status["session_store_status"] = "disconnected"
			status["session_store_error"] = err.Error()
		} else {
			status["session_store_status"] = "connected"
		}

		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    status,
		})
	}
}
