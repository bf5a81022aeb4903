package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/influencer-insight-go/internal/app"
	"github.com/kapu/influencer-insight-go/internal/config"
	"github.com/kapu/influencer-insight-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Influencer Insight server starting...",
		zap.String("version", "1.0.0-go"),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("addr", cfg.Server.Addr),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- container.Run(ctx)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
		logger.Info("Shutdown complete")
		return
	}

	// Graceful shutdown
	logger.Info("Shutting down gracefully...")
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	case <-time.After(15 * time.Second):
		logger.Warn("Shutdown timed out")
	}

	logger.Info("Shutdown complete")
}
