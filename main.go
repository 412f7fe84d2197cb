package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vit0-9/dylink_api/config"
	"github.com/vit0-9/dylink_api/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Error loading .env file, using environment variables from system if set.")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	app, err := NewApp(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-quit
		logrus.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(ctx); err != nil {
			logrus.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	if err := app.Start(cfg.Addr()); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
	<-stopped
}
