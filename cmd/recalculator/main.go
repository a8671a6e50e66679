package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairs-ledger/internal/config"
	"pairs-ledger/internal/database"
	"pairs-ledger/internal/logger"
	"pairs-ledger/internal/pairs"
	"pairs-ledger/internal/quotes"
	"pairs-ledger/internal/repository"
	"pairs-ledger/internal/settlement"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger("recalculator", cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	var quoteSource pairs.QuoteSource
	refreshQuotes := cfg.Recalculation.RefreshQuotes
	if cfg.Quotes.Enabled() {
		quoteSource = quotes.NewRestClient(&cfg.Quotes, log)
	} else if refreshQuotes {
		log.Warn("recalculation.refresh_quotes is set but no quote source is configured; skipping refresh")
		refreshQuotes = false
	}

	service := pairs.NewService(log,
		repository.NewPairRepository(db),
		repository.NewCompanyRepository(db),
		quoteSource)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	interval := time.Duration(cfg.Recalculation.Interval) * time.Second
	if interval <= 0 {
		log.Fatal("recalculation.interval must be positive", zap.Int("interval", cfg.Recalculation.Interval))
	}
	runner := settlement.NewRunner(log, service, interval, refreshQuotes)
	runner.Run(ctx)

	log.Info("Recalculator has been shut down.")
}
