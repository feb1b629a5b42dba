package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
	"go.uber.org/zap"
)

func symbols(markets []domain.Market) []string {
	out := make([]string, len(markets))
	for i, m := range markets {
		out[i] = m.Symbol
	}
	return out
}

func TestFilterMarkets(t *testing.T) {
	offline := usdtMarket("OFF", 1)
	offline.Status = domain.StatusOffline
	stock := usdtMarket("TSLA", 1)
	stock.Tags = []string{domain.TagTokenizedSecurity}
	btcQuoted := domain.Market{Symbol: "ETH-BTC", BaseCurrencySymbol: "ETH", QuoteCurrencySymbol: "BTC", Status: domain.StatusOnline}

	markets := []domain.Market{usdtMarket("AAA", 1), offline, stock, btcQuoted, usdtMarket("USDC", 1)}

	t.Run("All Exclusions", func(t *testing.T) {
		cfg := testConfig()
		cfg.IgnoreTokenizedStocks = true
		assert.Equal(t, []string{"AAA-USDT"}, symbols(usecase.FilterMarkets(markets, cfg)))
	})

	t.Run("Keeps Stocks And Stable Coins When Allowed", func(t *testing.T) {
		cfg := testConfig()
		cfg.IgnoreStableCoins = false
		assert.Equal(t, []string{"AAA-USDT", "TSLA-USDT", "USDC-USDT"}, symbols(usecase.FilterMarkets(markets, cfg)))
	})
}

func TestWithQuoteVolume(t *testing.T) {
	markets := []domain.Market{usdtMarket("AAA", 1), usdtMarket("BBB", 1), usdtMarket("CCC", 1)}
	summaries := []domain.MarketSummary{
		{Symbol: "AAA-USDT", QuoteVolume: 1200},
		{Symbol: "BBB-USDT", QuoteVolume: 0},
	}

	assert.Equal(t, []string{"AAA-USDT"}, symbols(usecase.WithQuoteVolume(markets, summaries)))
}

func TestMarketService_ActiveMarkets(t *testing.T) {
	ex := NewMockExchange()
	ex.Markets = []domain.Market{usdtMarket("AAA", 1), usdtMarket("BBB", 1)}
	ex.Summaries = []domain.MarketSummary{
		{Symbol: "AAA-USDT", QuoteVolume: 10},
		{Symbol: "BBB-USDT", QuoteVolume: 20},
	}

	active, err := usecase.NewMarketService(ex, testConfig(), zap.NewNop()).ActiveMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA-USDT", "BBB-USDT"}, symbols(active))
}

func TestMarketService_ActiveMarketsError(t *testing.T) {
	ex := NewMockExchange()
	ex.Markets = []domain.Market{usdtMarket("AAA", 1)}
	ex.Errs["get_market_summaries"] = errors.New("bad gateway")

	_, err := usecase.NewMarketService(ex, testConfig(), zap.NewNop()).ActiveMarkets(context.Background())
	assert.Error(t, err)
}
