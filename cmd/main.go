package main

import (
	"context"
	"fmt"
	"os"

	"github.com/skyvolt/aeroscope-backend/internal/app"
	"github.com/skyvolt/aeroscope-backend/internal/db"
	"github.com/skyvolt/aeroscope-backend/internal/handlers"
	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/middleware"
	"github.com/skyvolt/aeroscope-backend/internal/repos"
	"github.com/skyvolt/aeroscope-backend/internal/server"
	"github.com/skyvolt/aeroscope-backend/internal/services"
	"github.com/skyvolt/aeroscope-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg := app.LoadConfig(log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	promptTemplateRepo := repos.NewPromptTemplateRepo(thePG, log)
	decisionRepo := repos.NewDecisionRepo(thePG, log)
	analysisResultRepo := repos.NewAnalysisResultRepo(thePG, log)
	usageMetricRepo := repos.NewUsageMetricRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	retrier := services.NewCallRetrier(cfg.Retry, log)
	promptRegistry := services.NewPromptRegistry(thePG, log, promptTemplateRepo)
	if err := promptRegistry.EnsureSeeds(context.Background()); err != nil {
		log.Warn("Prompt seed install failed", "error", err)
	}
	pipelineService := services.NewPipelineService(log, promptRegistry, openaiClient, retrier, decisionRepo, analysisResultRepo, usageMetricRepo)
	reviewService := services.NewReviewService(log, decisionRepo, analysisResultRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	analyzeHandler := handlers.NewAnalyzeHandler(log, pipelineService)
	decisionHandler := handlers.NewDecisionHandler(log, reviewService)
	usageHandler := handlers.NewUsageHandler(log, usageMetricRepo)
	promptAdminHandler := handlers.NewPromptAdminHandler(log, promptRegistry)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, cfg.JWTSecretKey)
	rateLimiter := middleware.NewRateLimiter(log, cfg.RateLimitPerMinute)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		RateLimiter:        rateLimiter,
		AnalyzeHandler:     analyzeHandler,
		DecisionHandler:    decisionHandler,
		UsageHandler:       usageHandler,
		PromptAdminHandler: promptAdminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
