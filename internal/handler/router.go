package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/service"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// NewRouter sets up the Gin router with every route and middleware
func NewRouter(cfg *config.Config, assistant *service.Assistant, build BuildInfo, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "healthy",
			"service":           "campus-assistant",
			"version":           build.Version,
			"facilities":        len(assistant.Facilities()),
			"context_loaded_at": timePtr(assistant.ContextLoadedAt()),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    build.Version,
			"build_time": build.BuildTime,
			"git_commit": build.GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := NewChatHandler(assistant)
	issueHandler := NewIssueHandler(assistant)
	facilityHandler := NewFacilityHandler(assistant)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// LLM-backed endpoints share one token bucket
		llm := apiV1.Group("")
		if cfg.RateLimit.Enabled {
			llm.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)))
		}
		llm.POST("/chat", chatHandler.Chat)
		llm.POST("/issues/classify", issueHandler.Classify)

		apiV1.GET("/facilities", facilityHandler.List)

		admin := apiV1.Group("/admin", AdminAuth(cfg.Server.AdminToken))
		admin.POST("/refresh-context", facilityHandler.Refresh)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	return router
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
