package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/grachmannico95/payment-engine/internal/config"
	"github.com/grachmannico95/payment-engine/internal/dispatch"
	"github.com/grachmannico95/payment-engine/internal/handler"
	"github.com/grachmannico95/payment-engine/internal/server"
	"github.com/grachmannico95/payment-engine/internal/service"
	"github.com/grachmannico95/payment-engine/internal/storage"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Logging.Level)
	defer log.Sync()

	ctx := context.Background()
	log.Info(ctx, "Starting payment engine")

	repo := storage.NewMemoryStore()
	log.Info(ctx, "Repository initialized")

	dispatchCfg := &dispatch.Config{
		ShardCount:    cfg.Engine.ShardCount,
		ChannelBuffer: cfg.Engine.ChannelBuffer,
	}

	processor := service.NewProcessor(log)
	engineService := service.NewEngineService(repo, processor, log, dispatchCfg)
	log.Info(ctx, "Services initialized",
		"shard_count", dispatchCfg.ShardCount,
	)

	ledgerHandler := handler.NewLedgerHandler(engineService, log)
	healthHandler := handler.NewHealthHandler()

	srv := server.New(cfg, log, ledgerHandler, healthHandler)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal(ctx, "Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	log.Info(ctx, "Payment engine started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "HTTP server shutdown error",
			"error", err,
		)
	}

	log.Info(ctx, "Payment engine stopped gracefully")
}
