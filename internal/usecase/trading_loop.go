package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/metrics"
	"go.uber.org/zap"
)

// LoopDeps are the optional collaborators of a TradingLoop. Nil fields are
// skipped.
type LoopDeps struct {
	Journal     domain.JournalRepository
	Reporter    domain.Reporter
	Stream      domain.TickerSource
	Throttle    Throttle
	CallTimeout time.Duration
}

// CycleSummary describes one finished cycle.
type CycleSummary struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Markets    int            `json:"markets"`
	Decisions  map[string]int `json:"decisions"`
	Orders     int            `json:"orders"`
	Revenue    int            `json:"revenue_orders"`
	Failures   int            `json:"failures"`
	Error      string         `json:"error,omitempty"`
}

// TradingLoop runs the evaluate-and-trade cycle on a fixed delay. Within a
// cycle everything is sequential.
type TradingLoop struct {
	exchange  domain.Exchange
	stream    domain.TickerSource
	journal   domain.JournalRepository
	cfg       *Config
	logger    *zap.Logger
	markets   *MarketService
	executor  *TradeExecutor
	collector *RevenueCollector
	portfolio *PortfolioReporter

	mu   sync.RWMutex
	last *CycleSummary
}

func NewTradingLoop(exchange domain.Exchange, deps LoopDeps, cfg *Config, logger *zap.Logger) *TradingLoop {
	guarded := newGuardedExchange(exchange, deps.Throttle, deps.CallTimeout, deps.Stream)
	executor := NewTradeExecutor(guarded, deps.Journal, cfg, logger)

	return &TradingLoop{
		exchange:  guarded,
		stream:    deps.Stream,
		journal:   deps.Journal,
		cfg:       cfg,
		logger:    logger,
		markets:   NewMarketService(guarded, cfg, logger),
		executor:  executor,
		collector: NewRevenueCollector(guarded, executor, cfg, logger),
		portfolio: NewPortfolioReporter(guarded, deps.Reporter, deps.Journal, cfg, logger),
	}
}

// LastCycle returns the summary of the most recent cycle, or nil before the
// first one finished.
func (t *TradingLoop) LastCycle() *CycleSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Run repeats cycles until ctx is cancelled. A failed cycle is logged and the
// next one is still scheduled.
func (t *TradingLoop) Run(ctx context.Context) error {
	if t.cfg.Debug {
		t.logger.Warn("Debug mode is active: buy and sell requests and reporting are skipped")
	}

	if t.stream != nil {
		go func() {
			if err := t.stream.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				t.logger.Error("Ticker stream stopped", zap.Error(err))
			}
		}()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Trading loop stopped")
			return nil
		case <-timer.C:
		}

		t.runSafely(ctx)
		timer.Reset(t.cfg.RefreshTimeout)
	}
}

func (t *TradingLoop) runSafely(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CyclesTotal.WithLabelValues("panic").Inc()
			t.logger.Error("Cycle panicked", zap.Any("panic", r))
		}
	}()

	if _, err := t.RunCycle(ctx); err != nil && ctx.Err() == nil {
		t.logger.Error("Cycle failed", zap.Error(err))
	}
}

// RunCycle collects revenue, selects markets, evaluates and acts on each of
// them and finally reports the portfolio value.
func (t *TradingLoop) RunCycle(ctx context.Context) (*CycleSummary, error) {
	summary := &CycleSummary{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Decisions: make(map[string]int),
	}
	t.logger.Info("Cycle started", zap.String("cycle", summary.ID))

	err := t.runCycle(ctx, summary)

	summary.FinishedAt = time.Now()
	took := summary.FinishedAt.Sub(summary.StartedAt)
	metrics.CycleDuration.Observe(took.Seconds())
	if err != nil {
		summary.Error = err.Error()
		metrics.CyclesTotal.WithLabelValues("error").Inc()
	} else {
		metrics.CyclesTotal.WithLabelValues("ok").Inc()
	}

	t.mu.Lock()
	t.last = summary
	t.mu.Unlock()

	t.logger.Info("Cycle finished",
		zap.String("cycle", summary.ID),
		zap.Int("markets", summary.Markets),
		zap.Int("orders", summary.Orders),
		zap.Int("failures", summary.Failures),
		zap.Duration("took", took))
	return summary, err
}

func (t *TradingLoop) runCycle(ctx context.Context, summary *CycleSummary) error {
	start := time.Now()
	revenue, err := t.collector.Collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.Failures++
		t.logger.Error("Revenue collection failed", zap.Error(err))
	}
	summary.Revenue = len(revenue)
	t.logger.Info("Collected revenue", zap.Int("orders", len(revenue)), zap.Duration("took", time.Since(start)))

	markets, err := t.markets.ActiveMarkets(ctx)
	if err != nil {
		return err
	}
	summary.Markets = len(markets)

	if t.stream != nil {
		symbols := make([]string, len(markets))
		for i, m := range markets {
			symbols[i] = m.Symbol
		}
		if err := t.stream.Subscribe(symbols); err != nil {
			t.logger.Warn("Failed to subscribe tickers", zap.Error(err))
		}
	}

	// Taken after revenue collection so sold quantities are not sold twice.
	balances, err := t.exchange.GetBalances(ctx)
	if err != nil {
		return fmt.Errorf("get balances: %w", err)
	}
	held := make(map[string]domain.Balance, len(balances))
	for _, b := range balances {
		held[b.CurrencySymbol] = b
	}

	start = time.Now()
	for _, m := range markets {
		if err := ctx.Err(); err != nil {
			return err
		}

		var balance *domain.Balance
		if b, ok := held[currencyOf(m)]; ok {
			balance = &b
		}

		if err := t.processMarket(ctx, summary, m, balance); err != nil {
			summary.Failures++
			t.logger.Error("Market failed", zap.String("market", m.Symbol), zap.Error(err))
		}
	}
	t.logger.Info("Evaluated markets", zap.Int("markets", len(markets)), zap.Duration("took", time.Since(start)))

	if t.cfg.EnableReporting && !t.cfg.Debug {
		if _, err := t.portfolio.Report(ctx, summary.ID); err != nil {
			summary.Failures++
			t.logger.Error("Report failed", zap.Error(err))
		}
	}
	return nil
}

func (t *TradingLoop) processMarket(ctx context.Context, summary *CycleSummary, market domain.Market, balance *domain.Balance) error {
	decision, ticks, err := t.Evaluate(ctx, market, balance)
	if err != nil {
		return err
	}
	summary.Decisions[decision.String()]++
	t.record(ctx, summary.ID, market, decision, ticks, balance)

	order, err := t.executor.Execute(ctx, decision, market, balance)
	if errors.Is(err, domain.ErrInsufficientFunds) {
		t.logger.Info("Not enough funds for further investments", zap.String("market", market.Symbol), zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if order != nil {
		summary.Orders++
	}
	return nil
}

// Evaluate decides on one market. An empty or too short candle series gives
// NONE.
func (t *TradingLoop) Evaluate(ctx context.Context, market domain.Market, balance *domain.Balance) (domain.MarketDecision, TickCounts, error) {
	currency := currencyOf(market)
	if t.cfg.IsHODL(currency) {
		return domain.DecisionHODL, TickCounts{}, nil
	}

	candles, err := t.exchange.GetCandles(ctx, market.Symbol, t.cfg.TickInterval)
	if err != nil {
		return domain.DecisionNone, TickCounts{}, fmt.Errorf("get candles: %w", err)
	}

	windows := t.cfg.WindowsFor(currency)
	if len(candles) == 0 || len(candles) < max(windows.Short, windows.Long) {
		t.logger.Info("Not enough candles",
			zap.String("market", market.Symbol),
			zap.Int("candles", len(candles)),
			zap.Int("required", max(windows.Short, windows.Long)))
		return domain.DecisionNone, TickCounts{}, nil
	}

	ticks := CountTicks(candles, windows)
	return Decide(currency, ticks, balance, t.cfg), ticks, nil
}

func (t *TradingLoop) record(ctx context.Context, cycleID string, market domain.Market, decision domain.MarketDecision, ticks TickCounts, balance *domain.Balance) {
	metrics.DecisionsTotal.WithLabelValues(decision.String()).Inc()

	var available float64
	if balance != nil {
		available = balance.Available
	}
	t.logger.Info("Market decision",
		zap.String("market", market.Symbol),
		zap.Stringer("decision", decision),
		zap.Int("positive_ticks", ticks.PositiveTicks),
		zap.Int("negative_ticks", ticks.NegativeTicks),
		zap.Float64("available", available),
		zap.Bool("dry_run", t.cfg.Debug))

	if t.journal == nil {
		return
	}
	rec := &domain.DecisionRecord{
		CycleID:       cycleID,
		MarketSymbol:  market.Symbol,
		Decision:      decision.String(),
		PositiveTicks: ticks.PositiveTicks,
		NegativeTicks: ticks.NegativeTicks,
		Available:     available,
		CreatedAt:     time.Now(),
	}
	if err := t.journal.SaveDecision(ctx, rec); err != nil {
		t.logger.Warn("Failed to journal decision", zap.String("market", market.Symbol), zap.Error(err))
	}
}

func currencyOf(m domain.Market) string {
	if m.BaseCurrencySymbol != "" {
		return m.BaseCurrencySymbol
	}
	return domain.BaseCurrency(m.Symbol)
}
