package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certprep/quiz-service/internal/banks"
	"github.com/certprep/quiz-service/internal/cache"
	"github.com/certprep/quiz-service/internal/config"
	"github.com/certprep/quiz-service/internal/grading"
	"github.com/certprep/quiz-service/internal/handlers"
	"github.com/certprep/quiz-service/internal/repositories/postgres"
	"github.com/certprep/quiz-service/internal/services"
	"github.com/certprep/quiz-service/internal/utils"
	"github.com/certprep/quiz-service/internal/validator"
	"github.com/certprep/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	v := validator.New()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		log.Fatalf("database init: %v", err)
	}
	repo := postgres.NewSubmissionPostgreSQL(db)

	// Redis is optional; the service runs uncached without it.
	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		log.Fatalf("event publisher: %v", err)
	}
	defer publisher.Close()

	provider := banks.NewFileProvider(cfg.BanksDir, v.Question(), logger)

	policy := grading.ScalePolicy{
		ScaleMin:     cfg.ScoreScaleMin,
		ScaleMax:     cfg.ScoreScaleMax,
		PassingScore: cfg.PassingScore,
	}
	defaults := services.QuizDefaults{
		QuestionCount:    cfg.DefaultQuestionCount,
		TimeLimitMinutes: cfg.DefaultTimeLimitMinutes,
	}

	sessionService := services.NewSessionService(provider, repo, publisher, v, slogger, policy, defaults)
	bankService := services.NewBankService(provider, cacheService, slogger)
	historyService := services.NewHistoryService(repo, cacheService, slogger)
	exportService := services.NewExportService(repo, slogger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	hm := handlers.NewHandlerManager(sessionService, bankService, historyService, exportService, logger)
	hm.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Quiz service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
