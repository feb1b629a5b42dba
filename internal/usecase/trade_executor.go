package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/metrics"
	"go.uber.org/zap"
)

const (
	reasonInvest  = "invest"
	reasonReject  = "reject"
	reasonRevenue = "revenue"
)

// TradeExecutor places the limit orders that follow from a decision. In debug
// mode it logs what it would do and places nothing.
type TradeExecutor struct {
	exchange domain.Exchange
	journal  domain.JournalRepository
	cfg      *Config
	logger   *zap.Logger
}

func NewTradeExecutor(exchange domain.Exchange, journal domain.JournalRepository, cfg *Config, logger *zap.Logger) *TradeExecutor {
	return &TradeExecutor{
		exchange: exchange,
		journal:  journal,
		cfg:      cfg,
		logger:   logger,
	}
}

// Execute acts on decision for market. It returns the placed order, or nil
// when no order was due.
func (e *TradeExecutor) Execute(ctx context.Context, decision domain.MarketDecision, market domain.Market, balance *domain.Balance) (*domain.Order, error) {
	switch decision {
	case domain.DecisionNone, domain.DecisionHODL:
		return nil, nil
	case domain.DecisionInvest:
		return e.invest(ctx, market)
	case domain.DecisionReject:
		if balance == nil || balance.Available <= 0 {
			return nil, nil
		}
		return e.reject(ctx, market, balance)
	}
	return nil, fmt.Errorf("unknown decision %v for %s", decision, market.Symbol)
}

func (e *TradeExecutor) invest(ctx context.Context, market domain.Market) (*domain.Order, error) {
	mainBalance, err := e.exchange.GetBalance(ctx, e.cfg.MainMarket)
	if err != nil {
		return nil, fmt.Errorf("get %s balance: %w", e.cfg.MainMarket, err)
	}
	if mainBalance.Available < e.cfg.AmountPerInvest {
		return nil, fmt.Errorf("%w: %f %s available, %f needed", domain.ErrInsufficientFunds,
			mainBalance.Available, e.cfg.MainMarket, e.cfg.AmountPerInvest)
	}

	ticker, err := e.exchange.GetMarketTicker(ctx, market.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get ticker %s: %w", market.Symbol, err)
	}
	if ticker.AskRate <= 0 {
		return nil, fmt.Errorf("no ask rate for %s", market.Symbol)
	}

	quantity := e.cfg.AmountPerInvest / ticker.AskRate
	if quantity <= market.MinTradeSize {
		e.logger.Info("Invest quantity below min trade size",
			zap.String("market", market.Symbol),
			zap.Float64("quantity", quantity),
			zap.Float64("min_trade_size", market.MinTradeSize))
		return nil, nil
	}

	order, err := e.place(ctx, domain.DirectionBuy, market.Symbol, quantity, ticker.AskRate, reasonInvest)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Invested",
		zap.String("market", market.Symbol),
		zap.Float64("amount", e.cfg.AmountPerInvest),
		zap.String("currency", e.cfg.MainMarket),
		zap.Float64("quantity", quantity),
		zap.Float64("ask", ticker.AskRate),
		zap.Bool("dry_run", order.DryRun))
	return order, nil
}

func (e *TradeExecutor) reject(ctx context.Context, market domain.Market, balance *domain.Balance) (*domain.Order, error) {
	ticker, err := e.exchange.GetMarketTicker(ctx, market.Symbol)
	if err != nil {
		return nil, fmt.Errorf("get ticker %s: %w", market.Symbol, err)
	}

	if balance.Available <= market.MinTradeSize {
		e.logger.Info("Position below min trade size, not selling",
			zap.String("market", market.Symbol),
			zap.Float64("available", balance.Available),
			zap.Float64("min_trade_size", market.MinTradeSize))
		return nil, nil
	}

	order, err := e.place(ctx, domain.DirectionSell, market.Symbol, balance.Available, ticker.BidRate, reasonReject)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Rejected",
		zap.String("market", market.Symbol),
		zap.Float64("quantity", balance.Available),
		zap.Float64("bid", ticker.BidRate),
		zap.Bool("dry_run", order.DryRun))
	return order, nil
}

// SellRevenue sells quantity at rate as part of revenue collection.
func (e *TradeExecutor) SellRevenue(ctx context.Context, symbol string, quantity, rate float64) (*domain.Order, error) {
	return e.place(ctx, domain.DirectionSell, symbol, quantity, rate, reasonRevenue)
}

func (e *TradeExecutor) place(ctx context.Context, direction domain.OrderDirection, symbol string, quantity, limit float64, reason string) (*domain.Order, error) {
	var (
		order *domain.Order
		err   error
	)

	if e.cfg.Debug {
		order = &domain.Order{
			MarketSymbol: symbol,
			Direction:    direction,
			Type:         domain.OrderTypeLimit,
			Quantity:     quantity,
			Limit:        limit,
			Status:       "DRY_RUN",
			DryRun:       true,
			CreatedAt:    time.Now(),
		}
	} else if direction == domain.DirectionBuy {
		order, err = e.exchange.BuyLimit(ctx, symbol, quantity, limit)
	} else {
		order, err = e.exchange.SellLimit(ctx, symbol, quantity, limit)
	}

	if err != nil {
		metrics.OrdersTotal.WithLabelValues(string(direction), reason, "error").Inc()
		return nil, fmt.Errorf("%s %s %f@%f: %w", direction, symbol, quantity, limit, err)
	}
	if order == nil {
		order = &domain.Order{MarketSymbol: symbol, Direction: direction, Quantity: quantity, Limit: limit}
	}
	order.Reason = reason
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	result := "placed"
	if order.DryRun {
		result = "dry_run"
	}
	metrics.OrdersTotal.WithLabelValues(string(direction), reason, result).Inc()

	if e.journal != nil {
		if err := e.journal.SaveOrder(ctx, order); err != nil {
			e.logger.Warn("Failed to journal order", zap.String("market", symbol), zap.Error(err))
		}
	}
	return order, nil
}
