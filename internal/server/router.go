package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/skyvolt/aeroscope-backend/internal/handlers"
	"github.com/skyvolt/aeroscope-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	RateLimiter        *middleware.RateLimiter
	AnalyzeHandler     *handlers.AnalyzeHandler
	DecisionHandler    *handlers.DecisionHandler
	UsageHandler       *handlers.UsageHandler
	PromptAdminHandler *handlers.PromptAdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Governed AI endpoints, rate limited per user
	governed := api.Group("/")
	governed.Use(cfg.RateLimiter.Limit())
	governed.POST("/analyze/report", cfg.AnalyzeHandler.AnalyzeReport)
	governed.POST("/analyze/anomalies", cfg.AnalyzeHandler.DetectAnomalies)
	governed.POST("/missions/readiness", cfg.AnalyzeHandler.AssessMissionReadiness)
	governed.POST("/summary/daily", cfg.AnalyzeHandler.GenerateDailySummary)

	// Review
	api.GET("/decisions", cfg.DecisionHandler.ListDecisions)
	api.GET("/decisions/:id", cfg.DecisionHandler.GetDecision)
	api.POST("/results/:id/override", cfg.DecisionHandler.OverrideResult)

	// Usage
	api.GET("/usage", cfg.UsageHandler.GetUsage)

	// Prompt administration
	api.POST("/admin/prompts", cfg.PromptAdminHandler.CreateVersion)
	api.GET("/admin/prompts/:name", cfg.PromptAdminHandler.History)

	return router
}
