package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/crypto_trade_ema/internal/config"
	"github.com/vitos/crypto_trade_ema/internal/infrastructure/exchange"
	"github.com/vitos/crypto_trade_ema/internal/infrastructure/logger"
	"github.com/vitos/crypto_trade_ema/internal/infrastructure/storage"
	"github.com/vitos/crypto_trade_ema/internal/infrastructure/webhook"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
	"github.com/vitos/crypto_trade_ema/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Credentials
	creds, err := config.LoadCredentials(ctx, ".env")
	if err != nil {
		log.Fatal("Missing exchange credentials", zap.Error(err))
	}

	// 4. Init Journal
	store, err := storage.NewSQLiteStore(cfg.Journal.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 5. Init Exchange
	bittrex := exchange.NewBittrexAdapter(creds.APIKey, creds.APISecret, cfg.Exchange.RESTEndpoint, cfg.Exchange.UseAwards)

	deps := usecase.LoopDeps{
		Journal:     store,
		Throttle:    usecase.NewRateThrottle(cfg.Exchange.RequestsPerMinute),
		CallTimeout: cfg.CallTimeout(),
	}
	if cfg.Stream.Enabled {
		deps.Stream = exchange.NewTickerStream(
			cfg.Exchange.WSEndpoint,
			time.Duration(cfg.Stream.MaxTickerAgeMs)*time.Millisecond,
			time.Duration(cfg.Stream.ReconnectDelayMs)*time.Millisecond,
			log.Named("stream"),
		)
	}
	if cfg.EnableReporting {
		deps.Reporter = webhook.NewReporter(cfg.Reporting.WebhookURL)
	}

	// 6. Init Loop
	loop := usecase.NewTradingLoop(bittrex, deps, cfg.Trading(), log)

	// 7. Init Web Server
	server := web.NewServer(cfg.Server.Port, store, loop, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("Server failed", zap.Error(err))
		}
	}()

	log.Info("EMA crossover bot is starting",
		zap.String("main_market", cfg.MainMarket),
		zap.String("tick_interval", cfg.TickInterval),
		zap.Bool("debug", cfg.Debug))

	// 8. Run until SIGINT/SIGTERM
	if err := loop.Run(ctx); err != nil {
		log.Error("Trading loop failed", zap.Error(err))
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
