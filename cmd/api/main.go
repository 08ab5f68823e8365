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
	"github.com/rs/zerolog"

	"github.com/funagig/funagig-api/internal/config"
	"github.com/funagig/funagig-api/internal/database"
	"github.com/funagig/funagig-api/internal/handler"
	"github.com/funagig/funagig-api/internal/middleware"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/observability"
	"github.com/funagig/funagig-api/internal/repository"
	"github.com/funagig/funagig-api/internal/router"
	"github.com/funagig/funagig-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Application{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	gigRepo := repository.NewGigRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	events := service.NewDomainEvents(logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "funagig", cfg.UnreadCacheTTL, natsConn, logger)
	authService := service.NewAuthService(db, userRepo, events, notificationService, validate, logger, cfg.JWTSecret, cfg.TokenTTL)
	gigService := service.NewGigService(gigRepo, userRepo, validate, logger)
	applicationService := service.NewApplicationService(db, applicationRepo, gigRepo, events, notificationService, validate, logger)
	messagingService := service.NewMessagingService(db, conversationRepo, userRepo, events, notificationService, validate, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	streamCfg := handler.StreamConfig{
		PollInterval: cfg.StreamPollEvery,
		Heartbeat:    cfg.StreamHeartbeat,
		Lifetime:     cfg.StreamLifetime,
		RetryDelay:   cfg.ClientRetryDelay,
	}

	authHandler := handler.NewAuthHandler(authService, logger)
	gigHandler := handler.NewGigHandler(gigService, logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, logger)
	messagingHandler := handler.NewMessagingHandler(messagingService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, streamCfg)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		GigHandler:          gigHandler,
		ApplicationHandler:  applicationHandler,
		MessagingHandler:    messagingHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
