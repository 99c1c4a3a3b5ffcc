package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aduan-agent/config"
	"aduan-agent/database"
	"aduan-agent/llmclient"
	"aduan-agent/matcher"
	"aduan-agent/pipeline"
	"aduan-agent/social"
	"aduan-agent/web"
	"aduan-agent/websearch"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL, cfg.EmbeddingDimensions, cfg.AgencyCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	// Long-lived clients, created once and reused across requests
	llm := llmclient.New(cfg, logger)
	search := websearch.New(cfg, logger)

	keywordMatcher := matcher.NewKeywordMatcher(store, logger)
	vectorMatcher := matcher.NewVectorMatcher(llm, store, logger)
	resolver := social.NewResolver(store, search, llm, logger)

	p := pipeline.New(keywordMatcher, vectorMatcher, llm, resolver, cfg.TopKMatches, logger)

	webServer := web.NewServer(p, resolver, store, logger, cfg)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting complaint routing web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
