package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairs-ledger/internal/api"
	"pairs-ledger/internal/config"
	"pairs-ledger/internal/database"
	"pairs-ledger/internal/logger"
	"pairs-ledger/internal/pairs"
	"pairs-ledger/internal/quotes"
	"pairs-ledger/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	// Prices and profit/loss go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger("pairs-server", cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	pairRepo := repository.NewPairRepository(db)
	companyRepo := repository.NewCompanyRepository(db)

	// The quote source is optional; without it the refresh route is not served.
	var quoteSource pairs.QuoteSource
	if cfg.Quotes.Enabled() {
		quoteSource = quotes.NewRestClient(&cfg.Quotes, log)
		log.Info("Quote source configured", zap.String("base_url", cfg.Quotes.BaseURL))
	}

	pairService := pairs.NewService(log, pairRepo, companyRepo, quoteSource)
	companyService := pairs.NewCompanyService(log, companyRepo)

	gin.SetMode(cfg.Server.Mode)
	handler := api.NewAPIHandler(log, pairService, companyService)
	router := api.NewRouter(log, handler, cfg.Quotes.Enabled())

	server := api.NewAPIServer(cfg.Server.Port, router, log)
	errc := server.Start()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigchan:
		log.Info("Shutdown signal received, gracefully shutting down...")
	case err := <-errc:
		if err != nil {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error("Failed to stop API server", zap.Error(err))
	}
	log.Info("Server has been shut down.")
}
