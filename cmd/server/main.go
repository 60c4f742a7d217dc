package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinical-dss-server/internal/api"
	"github.com/clinical-dss-server/internal/config"
	"github.com/clinical-dss-server/internal/engine"
	"github.com/clinical-dss-server/internal/feedback"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging)

	// Load the pretrained classifier; the service cannot run without it.
	encoder := engine.NewEncoder()
	scorer, err := engine.LoadScorer(logger, encoder, cfg.Model.Path)
	if err != nil {
		log.Fatalf("Failed to load classifier model: %v", err)
	}

	rules := engine.NewRuleBase(logger, cfg.Rules)
	reasoner, err := engine.NewReasoner(logger, scorer, rules)
	if err != nil {
		log.Fatalf("Failed to initialize reasoning engine: %v", err)
	}

	store, err := feedback.NewSQLiteStore(cfg.Feedback.DBPath)
	if err != nil {
		log.Fatalf("Failed to open feedback store: %v", err)
	}
	defer store.Close()

	server, err := api.NewServer(configManager, logger, reasoner, store)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	logger.Infof("Starting clinical decision support server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}
