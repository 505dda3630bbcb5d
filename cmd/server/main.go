// Package main is the entry point for the CodeInsight server.
//
// main() stays minimal: load configuration, build the logger, hand
// everything to internal/server. All actual logic lives in imported
// packages — this separation keeps the app testable and its components
// reusable from other entry points.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/config"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	// slog with a text handler — human-readable in a terminal, still
	// structured enough to grep by field.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Configuration is YAML with env-var overrides; env always wins.
	// JWT_SECRET is the only hard requirement — generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" {
		logger.Warn("no LLM API keys configured — /api/explain will always fail")
	}

	// Ensure the database directory exists (like `mkdir -p`).
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(&cfg, logger, nil)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
