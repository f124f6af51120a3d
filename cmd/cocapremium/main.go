package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/agamariel/cocapremium/internal/config"
	"github.com/agamariel/cocapremium/internal/logger"
	"go.uber.org/zap"
)

// shutdownTimeout - сколько ждём завершения активных запросов.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Start(ctx)
	}()

	// сигнал или падение сервера - в обоих случаях останавливаемся
	select {
	case <-ctx.Done():
		zlog.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			zlog.Error("server error", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown failed", zap.Error(err))
	}
}
