package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartfarm/internal/config"
	"smartfarm/internal/database"
	"smartfarm/internal/services"
	"smartfarm/pkg/logger"
	"smartfarm/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.App.LogPath, cfg.App.Name, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg.Database, zlog, cfg.App.Debug)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Initialize RabbitMQ Client ---
	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		}, zlog.Named("rabbitmq"))
		if err != nil {
			return err
		}
		defer mqClient.Close()
		events = mqClient

		audit := zlog.Named("audit")
		if err := mqClient.Consume(func(routingKey string, body []byte) error {
			audit.Info("marketplace event", zap.String("routing_key", routingKey), zap.ByteString("body", body))
			return nil
		}); err != nil {
			return err
		}
	} else {
		zlog.Info("RABBITMQ_URL not set, event publication disabled")
	}

	app, err := NewApp(Deps{Config: cfg, DB: db, Log: zlog, Events: events})
	if err != nil {
		return err
	}

	if cfg.Seed.Enabled {
		if err := seedAccounts(ctx, app.Auth, cfg.Seed, zlog.Named("seed")); err != nil {
			return err
		}
	}

	// --- Start HTTP Server ---
	errCh := make(chan error, 1)
	go func() {
		zlog.Info("starting server", zap.String("addr", cfg.App.Port))
		errCh <- app.Fiber.Listen(cfg.App.Port)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zlog.Info("shutting down server", zap.String("signal", sig.String()))
	}

	if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("error during fiber shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zlog.Info("server gracefully stopped")
	return nil
}
