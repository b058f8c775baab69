package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelier/internal/backend"
	"atelier/internal/config"
	"atelier/internal/infrastructure/logger"
	"atelier/internal/metrics"
	"atelier/internal/notify"
	"atelier/internal/order"
	"atelier/internal/product"
	"atelier/internal/server"
	"atelier/internal/session"
	"atelier/internal/web"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	metrics.Init()

	sess := session.New(cfg.Session.File, zapLogger)
	client := backend.New(cfg.Backend.URL, cfg.Backend.Timeout, sess, zapLogger)
	flash := notify.NewFlash()

	addForm, list := product.NewModule(client, sess, flash, zapLogger)
	board := order.NewModule(client, sess, flash, zapLogger)

	pages, err := web.NewHandler(sess, client, addForm, list, board, flash, zapLogger)
	if err != nil {
		zapLogger.Fatal("building page handlers", zap.Error(err))
	}

	router := server.NewRouter(pages, zapLogger)
	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
