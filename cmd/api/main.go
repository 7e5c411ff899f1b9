package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/escrow-platform/backend/internal/config"
	"github.com/escrow-platform/backend/internal/db"
	"github.com/escrow-platform/backend/internal/events"
	apphttp "github.com/escrow-platform/backend/internal/http"
	"github.com/escrow-platform/backend/internal/http/handlers"
	"github.com/escrow-platform/backend/internal/provider"
	"github.com/escrow-platform/backend/internal/repositories"
	"github.com/escrow-platform/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	dealRepo := repositories.NewDealRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	webhookRepo := repositories.NewWebhookRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Payment provider
	adapter := provider.NewMockAdapter(log)

	// Services
	fraudService := services.NewFraudService(userRepo, dealRepo, auditRepo, log)
	paymentService := services.NewPaymentService(paymentRepo, auditRepo, adapter, cfg.PaymentProvider, log)
	dealService := services.NewDealService(dealRepo, userRepo, paymentService, fraudService, auditRepo, publisher, log)
	webhookService := services.NewWebhookService(webhookRepo, paymentRepo, dealRepo, auditRepo, cfg.WebhookTrustedProvider, log)
	userService := services.NewUserService(userRepo, fraudService, auditRepo, cfg.JWTSecret, cfg.JWTExpiration, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, log)
	dealHandler := handlers.NewDealHandler(dealService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	webhookHandler := handlers.NewWebhookHandler(webhookService, log)
	adminHandler := handlers.NewAdminHandler(dealService, userService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, dealHandler, paymentHandler, webhookHandler, adminHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
