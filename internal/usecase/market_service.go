package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_trade_ema/internal/domain"
	"go.uber.org/zap"
)

// MarketService selects the markets worth evaluating in a cycle.
type MarketService struct {
	exchange domain.Exchange
	cfg      *Config
	logger   *zap.Logger
}

func NewMarketService(exchange domain.Exchange, cfg *Config, logger *zap.Logger) *MarketService {
	return &MarketService{
		exchange: exchange,
		cfg:      cfg,
		logger:   logger,
	}
}

// ActiveMarkets returns the online main-market pairs that traded volume.
func (s *MarketService) ActiveMarkets(ctx context.Context) ([]domain.Market, error) {
	start := time.Now()
	markets, err := s.exchange.GetMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	filtered := FilterMarkets(markets, s.cfg)
	s.logger.Info("Filtered markets",
		zap.Int("fetched", len(markets)),
		zap.Int("filtered", len(filtered)),
		zap.String("main_market", s.cfg.MainMarket),
		zap.Duration("took", time.Since(start)))

	start = time.Now()
	summaries, err := s.exchange.GetMarketSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("get market summaries: %w", err)
	}
	active := WithQuoteVolume(filtered, summaries)
	s.logger.Info("Filtered market summaries",
		zap.Int("fetched", len(summaries)),
		zap.Int("filtered", len(active)),
		zap.Duration("took", time.Since(start)))
	return active, nil
}

// FilterMarkets keeps online markets quoted in the main market, minus
// tokenized securities and stable coins when configured.
func FilterMarkets(markets []domain.Market, cfg *Config) []domain.Market {
	var out []domain.Market
	for _, m := range markets {
		if m.QuoteCurrencySymbol != cfg.MainMarket || m.Status != domain.StatusOnline {
			continue
		}
		if cfg.IgnoreTokenizedStocks && m.HasTag(domain.TagTokenizedSecurity) {
			continue
		}
		if cfg.IsIgnoredStableCoin(m.BaseCurrencySymbol) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// WithQuoteVolume keeps the markets whose summary shows positive quote volume.
// Markets without a summary are dropped.
func WithQuoteVolume(markets []domain.Market, summaries []domain.MarketSummary) []domain.Market {
	volume := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		volume[s.Symbol] = s.QuoteVolume
	}

	var out []domain.Market
	for _, m := range markets {
		if v, ok := volume[m.Symbol]; ok && v > 0 {
			out = append(out, m)
		}
	}
	return out
}
