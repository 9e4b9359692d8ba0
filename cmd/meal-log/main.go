// cmd/meal-log/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"indian-meal-log/internal/config"
	"indian-meal-log/internal/foods"
	"indian-meal-log/internal/sampling"
	"indian-meal-log/internal/server"
	"indian-meal-log/internal/storage"
	"indian-meal-log/internal/tracker"
)

var (
	port    = flag.Int("port", 0, "Port for HTTP transport (overrides MEAL_LOG_PORT)")
	host    = flag.String("host", "", "Host address (overrides MEAL_LOG_HOST)")
	address = flag.String("address", "", "Address (alias for host)")
	dbPath  = flag.String("db-path", "", "Database path (overrides MEAL_LOG_DB_PATH)")
	envFile = flag.String("env-file", ".env", "Optional dotenv file")
	version = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("indian-meal-log version %s\n", config.Version)
		os.Exit(0)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)

	logger := config.SetupLogger(cfg)

	store, err := storage.NewSQLiteStorage(cfg.DBPath,
		storage.WithLogger(logger),
		storage.WithRetentionLimit(cfg.RetentionLimit),
	)
	if err != nil {
		logger.Error("Failed to open meal store", slog.String("path", cfg.DBPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	analyzer := sampling.NewCachedAnalyzer(newAnalyzer(cfg), cfg.AnalysisCacheSize, cfg.AnalysisCacheTTL)

	meals := tracker.New(analyzer, store, foods.Default(), tracker.Options{
		TrustClientNutrition: cfg.TrustClientNutrition,
		Logger:               logger,
	})

	srv := server.NewMealLogServer(cfg, meals, store, logger)
	logger.Info("Meal log configured",
		slog.String("ai_provider", cfg.AIProvider),
		slog.Int("retention_limit", cfg.RetentionLimit),
		slog.String("version", config.Version),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("Server error", slog.String("error", err.Error()))
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("Error during shutdown", slog.String("error", err.Error()))
	}
}

// applyFlags lets explicit command line flags win over the environment.
func applyFlags(cfg *config.Config) {
	if *port != 0 {
		cfg.Port = *port
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *address != "" {
		cfg.Host = *address
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
}

func newAnalyzer(cfg *config.Config) sampling.Analyzer {
	if cfg.AIProvider == config.ProviderGemini {
		return sampling.NewGeminiClient(sampling.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.AITimeout,
		})
	}
	return sampling.NewSamplingClient(sampling.GatewayConfig{
		ProxyURL: cfg.ProxyURL,
		APIKey:   cfg.ProxyAPIKey,
		Model:    cfg.OpenRouterModel,
		Timeout:  cfg.AITimeout,
	})
}
