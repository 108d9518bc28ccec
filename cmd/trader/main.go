package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mt5-trade-bot-go/internal/config"
	"mt5-trade-bot-go/internal/database"
	"mt5-trade-bot-go/internal/gateway"
	"mt5-trade-bot-go/internal/logger"
	"mt5-trade-bot-go/internal/metrics"
	"mt5-trade-bot-go/internal/telegram"
	"mt5-trade-bot-go/internal/trader"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Load the symbol universe
	symbols, err := config.LoadSymbols(cfg.Trading.SymbolsFile, cfg.Trading.LotMultiplier, log)
	if err != nil {
		log.Fatal("Failed to load symbol config", zap.Error(err))
	}
	log.Info("Symbol universe loaded", zap.Int("count", len(symbols)))

	// Initialize trade journal database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize the gateway client and verify the terminal session
	gw := gateway.NewClient(&cfg.Gateway, log)
	if err := gw.Ping(); err != nil {
		log.Fatal("Failed to connect to MT5 gateway", zap.Error(err))
	}
	log.Info("Successfully connected to MT5 gateway.")

	// Notification channel
	notifier := telegram.NewClient(&cfg.Telegram, log)

	// Prometheus endpoint
	metrics.Serve(cfg.Metrics.Port, log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the trading engine
	tradeEngine := trader.NewEngine(log, &cfg, symbols, gw, notifier, db)

	apiServer := trader.NewAPIServer(tradeEngine, cfg.Trading.ApiPort, log)
	apiServer.Start()
	defer apiServer.Stop(context.Background())

	if err := tradeEngine.Run(ctx); err != nil {
		log.Fatal("Trading engine terminated", zap.Error(err))
	}

	log.Info("Bot has been shut down.")
}
