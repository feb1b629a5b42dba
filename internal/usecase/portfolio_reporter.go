package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_trade_ema/internal/domain"
	"go.uber.org/zap"
)

// referenceCurrency is priced in the main market and sent along with the total.
const referenceCurrency = "BTC"

// PortfolioReporter values the account in the main market and publishes it.
type PortfolioReporter struct {
	exchange domain.Exchange
	reporter domain.Reporter
	journal  domain.JournalRepository
	cfg      *Config
	logger   *zap.Logger
}

func NewPortfolioReporter(exchange domain.Exchange, reporter domain.Reporter, journal domain.JournalRepository, cfg *Config, logger *zap.Logger) *PortfolioReporter {
	return &PortfolioReporter{
		exchange: exchange,
		reporter: reporter,
		journal:  journal,
		cfg:      cfg,
		logger:   logger,
	}
}

// Value sums the main-market balance and every other held balance at its last
// trade rate. Coins whose ticker cannot be fetched are left out.
func (r *PortfolioReporter) Value(ctx context.Context) (*domain.PortfolioReport, error) {
	balances, err := r.exchange.GetBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	mainBalance, err := r.exchange.GetBalance(ctx, r.cfg.MainMarket)
	if err != nil {
		return nil, fmt.Errorf("get %s balance: %w", r.cfg.MainMarket, err)
	}
	ref, err := r.exchange.GetMarketTicker(ctx, domain.MarketSymbol(referenceCurrency, r.cfg.MainMarket))
	if err != nil {
		return nil, fmt.Errorf("get reference ticker: %w", err)
	}

	total := mainBalance.Available
	for _, b := range balances {
		if b.Available <= 0 || b.CurrencySymbol == r.cfg.MainMarket {
			continue
		}
		symbol := domain.MarketSymbol(b.CurrencySymbol, r.cfg.MainMarket)
		ticker, err := r.exchange.GetMarketTicker(ctx, symbol)
		if err != nil {
			r.logger.Warn("Skipping balance in report", zap.String("market", symbol), zap.Error(err))
			continue
		}
		total += b.Available * ticker.LastTradeRate
	}

	return &domain.PortfolioReport{
		MainMarket:    r.cfg.MainMarket,
		TotalValue:    total,
		ReferenceRate: ref.LastTradeRate,
		CreatedAt:     time.Now(),
	}, nil
}

// Report values the portfolio, sends it to the reporter and journals it.
func (r *PortfolioReporter) Report(ctx context.Context, cycleID string) (*domain.PortfolioReport, error) {
	report, err := r.Value(ctx)
	if err != nil {
		return nil, err
	}
	report.CycleID = cycleID

	if r.reporter != nil {
		if err := r.reporter.Report(ctx, report.TotalValue, report.ReferenceRate); err != nil {
			return report, fmt.Errorf("send report: %w", err)
		}
	}
	if r.journal != nil {
		if err := r.journal.SaveReport(ctx, report); err != nil {
			r.logger.Warn("Failed to journal report", zap.Error(err))
		}
	}

	r.logger.Info("Reported portfolio value",
		zap.Float64("total", report.TotalValue),
		zap.String("currency", report.MainMarket),
		zap.Float64("reference_rate", report.ReferenceRate))
	return report, nil
}
