package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/proposal-analyzer/backend/internal/analysis"
	"github.com/proposal-analyzer/backend/internal/api/handlers"
	"github.com/proposal-analyzer/backend/internal/cache/redis"
	"github.com/proposal-analyzer/backend/internal/extract"
	"github.com/proposal-analyzer/backend/internal/llm"
	"github.com/proposal-analyzer/backend/internal/metrics"
	"github.com/proposal-analyzer/backend/internal/middleware/ratelimit"
	"github.com/proposal-analyzer/backend/internal/middleware/security"
	"github.com/proposal-analyzer/backend/internal/middleware/validation"
	"github.com/proposal-analyzer/backend/internal/proofread"
	"github.com/proposal-analyzer/backend/internal/report"
	"github.com/proposal-analyzer/backend/internal/review"
	"github.com/proposal-analyzer/backend/internal/storage/artifacts"
	"github.com/proposal-analyzer/backend/internal/storage/sqlite"
	"github.com/proposal-analyzer/backend/pkg/config"
	appLogger "github.com/proposal-analyzer/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Proposal Analyzer API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLHours)*time.Hour,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, verdict caching disabled", zap.Error(err))
			cacheClient = nil
		}
		defer cacheClient.Close()
	}

	var artifactStore *artifacts.Store
	if cfg.Minio.Enabled {
		artifactStore, err = artifacts.New(
			context.Background(),
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.Bucket,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			appLogger.Fatal("Failed to create artifact store", zap.Error(err))
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.AnalysisModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	reviewer := review.New(llmClient, cfg.LLM.FeedbackModel)
	proofreader := proofread.New(llmClient, cfg.LLM.ProofreadModel, cfg.Analysis.ChunkSize, cfg.Analysis.ChunkOverlap)
	engine := analysis.NewEngine(llmClient, sqliteClient, cacheClient, reviewer, proofreader,
		cfg.LLM.AnalysisModel, cfg.Analysis.MaxQuestions)

	generator, err := report.NewGenerator(cfg.Storage.ExportDir)
	if err != nil {
		appLogger.Fatal("Failed to create report generator", zap.Error(err))
	}

	documentHandler := handlers.NewDocumentHandler(sqliteClient, extract.New(), cfg.Storage.UploadDir)
	questionsHandler := handlers.NewQuestionsHandler(cfg.Storage.QuestionsFile)
	analysisHandler := handlers.NewAnalysisHandler(engine, sqliteClient, questionsHandler, cfg.Analysis.DefaultPersona)
	wsHandler := handlers.NewWebSocketHandler(analysisHandler)
	exportHandler := handlers.NewExportHandler(sqliteClient, generator, artifactStore, handlers.ModelNames{
		Analysis:  cfg.LLM.AnalysisModel,
		Feedback:  cfg.LLM.FeedbackModel,
		Proofread: cfg.LLM.ProofreadModel,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.RateLimitPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	api := app.Group("/api/v1")
	api.Use(validation.Middleware(validation.Config{
		MaxUploadBytes: cfg.Storage.MaxUploadMB * 1024 * 1024,
		Logger:         appLogger.GetLogger(),
	}))

	api.Post("/documents", rateLimiter.Middleware(), documentHandler.Upload)
	api.Get("/documents/:id", documentHandler.Get)

	api.Post("/questions", questionsHandler.Save)
	api.Get("/questions", questionsHandler.Get)

	api.Post("/analysis", rateLimiter.Middleware(), analysisHandler.Stream)
	api.Get("/analysis/history", analysisHandler.History)

	api.Use("/analysis/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/analysis/ws", websocket.New(wsHandler.HandleConnection))

	api.Post("/exports", rateLimiter.Middleware(), exportHandler.Create)
	api.Get("/exports/:filename", exportHandler.Download)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
