package http

import (
	"time"

	"github.com/escrow-platform/backend/internal/config"
	"github.com/escrow-platform/backend/internal/http/handlers"
	"github.com/escrow-platform/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	dealHandler *handlers.DealHandler,
	paymentHandler *handlers.PaymentHandler,
	webhookHandler *handlers.WebhookHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/token", authHandler.Token)
	api.Get("/auth/me", middleware.AuthMiddleware(cfg, log), authHandler.Me)

	// Rate-limited endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Deals: actor ids travel in request bodies, authorization is enforced
	// per operation in the service layer.
	api.Post("/deals", dealHandler.CreateDeal)
	api.Get("/deals", dealHandler.ListDeals)
	api.Get("/deals/:id", dealHandler.GetDeal)
	api.Post("/deals/:id/fund", dealHandler.FundDeal)
	api.Post("/deals/:id/confirm", dealHandler.ConfirmExecution)
	api.Post("/deals/:id/accept", dealHandler.AcceptByBuyer)
	api.Post("/deals/:id/dispute", dealHandler.RaiseDispute)
	api.Post("/deals/:id/cancel", dealHandler.CancelDeal)
	api.Get("/deals/:id/events", dealHandler.GetDealEvents)

	// Payments (read surface)
	api.Get("/payments", paymentHandler.ListPayments)
	api.Get("/payments/deal/:dealId", paymentHandler.ListByDeal)
	api.Get("/payments/deal/:dealId/status", paymentHandler.GetStatus)

	// Provider callbacks
	api.Post("/webhooks/payment", webhookHandler.ProcessWebhook)

	// Admin
	api.Get("/admin/disputes", adminHandler.GetDisputes)
	api.Get("/admin/deals", adminHandler.GetAllDeals)
	api.Post("/admin/deals/:id/resolve", adminHandler.ResolveDeal)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
