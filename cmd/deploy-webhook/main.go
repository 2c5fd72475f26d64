package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sefazor/fanvault-backend/internal/config"
	"github.com/sefazor/fanvault-backend/pkg/logger"
	"github.com/sefazor/fanvault-backend/pkg/webhook"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadDeploy()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer zlog.Sync()

	runner := webhook.NewRunner(cfg.Script, cfg.Timeout, zlog.Named("deploy"))
	app := webhook.NewServer([]byte(cfg.Secret), cfg.Ref, runner, zlog)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		_ = app.Shutdown()
	}()

	zlog.Info("deploy webhook listening", zap.String("port", cfg.Port), zap.String("ref", cfg.Ref))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}

	// Çalışan deploy varsa bitmesini bekle
	runner.Wait()
}
