package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtbase/internal/config"
	"courtbase/internal/jobs"
	"courtbase/internal/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting jobs service...")

	// Отдельный NATS client ID, чтобы не конфликтовать с API
	cfg.NATS.ClientID = "courtbase-jobs"

	jobService, err := jobs.NewJobService(cfg)
	if err != nil {
		logger.Fatal("Failed to create job service", "error", err)
	}

	if err := jobService.Start(); err != nil {
		logger.Fatal("Failed to start jobs", "error", err)
	}

	log.Info("Jobs service started successfully")

	// Ждем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down jobs service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := jobService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Jobs service stopped")
}
