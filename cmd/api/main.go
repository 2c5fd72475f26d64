package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sefazor/fanvault-backend/internal/config"
	"github.com/sefazor/fanvault-backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Config'i yükle
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initializeApp(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}
	defer cleanup()

	// Email kuyruğu arka planda işlenir
	go app.worker.Start(ctx)

	go func() {
		<-ctx.Done()
		zlog.Info("shutting down")
		if err := app.app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("api listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.app.Listen(":" + cfg.Port); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}
}
