package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supperclub/internal/config"
	"supperclub/internal/consumers"
	"supperclub/internal/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Consumers need their own client ID on the shared cluster.
	cfg.NATS.ClientID = "supperclub-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	slog.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down consumers service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Consumers service stopped")
}
