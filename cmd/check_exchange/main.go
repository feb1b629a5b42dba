package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_trade_ema/internal/config"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/infrastructure/exchange"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	symbol := flag.String("market", "BTC-USDT", "market to fetch a ticker and candles for")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	creds, err := config.LoadCredentials(ctx, ".env")
	if err != nil {
		fmt.Printf("Failed to load credentials: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing Bittrex Interaction...\n")
	fmt.Printf("Endpoint: %s\n", cfg.Exchange.RESTEndpoint)

	adapter := exchange.NewBittrexAdapter(creds.APIKey, creds.APISecret, cfg.Exchange.RESTEndpoint, cfg.Exchange.UseAwards)
	trading := cfg.Trading()

	// 2. Check Public Endpoints (Markets, Ticker, Candles)
	markets, err := adapter.GetMarkets(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get markets: %v\n", err)
	} else {
		filtered := usecase.FilterMarkets(markets, trading)
		fmt.Printf("✅ Markets: %d fetched, %d tradable against %s\n", len(markets), len(filtered), cfg.MainMarket)
	}

	ticker, err := adapter.GetMarketTicker(ctx, *symbol)
	if err != nil {
		fmt.Printf("❌ Failed to get ticker: %v\n", err)
	} else {
		fmt.Printf("✅ Ticker (%s): bid=%f ask=%f last=%f\n", *symbol, ticker.BidRate, ticker.AskRate, ticker.LastTradeRate)
	}

	candles, err := adapter.GetCandles(ctx, *symbol, domain.CandleInterval(cfg.TickInterval))
	if err != nil {
		fmt.Printf("❌ Failed to get candles: %v\n", err)
	} else {
		windows := trading.WindowsFor(domain.BaseCurrency(*symbol))
		ticks := usecase.CountTicks(candles, windows)
		fmt.Printf("✅ Candles (%s): %d, EMA %d/%d positive=%d negative=%d\n",
			*symbol, len(candles), windows.Short, windows.Long, ticks.PositiveTicks, ticks.NegativeTicks)
	}

	// 3. Check Private Endpoint (Balances)
	balances, err := adapter.GetBalances(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get balances: %v\n", err)
		return
	}
	for _, b := range balances {
		if b.Available > 0 {
			fmt.Printf("✅ Balance %s: available=%f total=%f\n", b.CurrencySymbol, b.Available, b.Total)
		}
	}
}
