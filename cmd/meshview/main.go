// Package main is the entry point for the meshview desktop viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/printforge/meshview/internal/config"
	"github.com/printforge/meshview/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("=== meshview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	app, err := NewApp(cfg)
	if err != nil {
		logger.Log.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Info("viewer closed normally")
}
