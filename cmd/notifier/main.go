package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/escrow-platform/backend/internal/config"
	"github.com/escrow-platform/backend/internal/db"
	"github.com/escrow-platform/backend/internal/events"
	"github.com/escrow-platform/backend/internal/notify"
	"github.com/escrow-platform/backend/internal/repositories"
	"go.uber.org/zap"
)

// Subscribes to deal events on Redis and fans them out to participants by
// email and to the operations chat via the telegram bridge.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.NotificationsEnable {
		log.Info("notifications disabled, exiting")
		return
	}

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	auditRepo := repositories.NewAuditRepo(pool)
	subscriber := events.NewRedisSubscriber(rdb, log)

	var telegram notify.TelegramSender
	if cfg.TelegramBridgeURL != "" && cfg.TelegramOpsChatID != 0 {
		telegram = notify.NewTelegramBridgeClient(cfg.TelegramBridgeURL, log)
	} else {
		telegram = notify.NewMockTelegramSender(log)
	}
	email := notify.NewMockEmailAdapter(log)

	opsChatID := strconv.FormatInt(cfg.TelegramOpsChatID, 10)
	notifier := notify.NewNotifier(email, telegram, opsChatID, auditRepo, log)

	log.Info("notifier started")

	_ = subscriber.Subscribe(ctx, events.StreamDeal, func(event events.Event) {
		notifier.HandleEvent(ctx, event)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notifier")
	cancel()
}
