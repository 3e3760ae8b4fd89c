package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/advait122/ROADmap/internal/config"
	"github.com/advait122/ROADmap/internal/database"
	"github.com/advait122/ROADmap/internal/handler"
	"github.com/advait122/ROADmap/internal/middleware"
	"github.com/advait122/ROADmap/internal/repository"
	"github.com/advait122/ROADmap/internal/router"
	"github.com/advait122/ROADmap/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, match cache and cross-node notifications disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	repos := service.NewRepositories(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)
	matchingService := service.NewMatchingService(repos, notificationService, redisClient, validate, logger, service.MatchingConfig{
		CatalogLimit: cfg.CatalogLimit,
		MatchLimit:   cfg.MatchLimit,
		CacheTTL:     cfg.MatchCacheTTL,
	})
	roadmapService := service.NewRoadmapService(repos, notificationService, matchingService, validate, logger)
	assessmentService := service.NewAssessmentService(repos, notificationService, matchingService, validate, logger)
	dashboardService := service.NewStudentDashboardService(repos, roadmapService, matchingService, notificationRepo, cfg.ForecastDays, logger)
	companyService := service.NewCompanyService(repos, notificationService, notificationRepo, validate, logger)

	roadmapHandler := handler.NewRoadmapHandler(roadmapService, assessmentService, logger)
	studentDashboardHandler := handler.NewStudentDashboardHandler(dashboardService, logger)
	opportunityHandler := handler.NewOpportunityHandler(matchingService, cfg.ForecastDays, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive, cfg.NotificationPageSize)
	companyHandler := handler.NewCompanyHandler(companyService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		RoadmapHandler:          roadmapHandler,
		StudentDashboardHandler: studentDashboardHandler,
		OpportunityHandler:      opportunityHandler,
		NotificationHandler:     notificationHandler,
		CompanyHandler:          companyHandler,
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(ctx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
