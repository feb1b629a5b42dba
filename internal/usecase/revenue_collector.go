package usecase

import (
	"context"
	"fmt"

	"github.com/vitos/crypto_trade_ema/internal/domain"
	"go.uber.org/zap"
)

// RevenueCollector sells the part of each position worth more than the
// invested amount, leaving the principal in place.
type RevenueCollector struct {
	exchange domain.Exchange
	executor *TradeExecutor
	cfg      *Config
	logger   *zap.Logger
}

func NewRevenueCollector(exchange domain.Exchange, executor *TradeExecutor, cfg *Config, logger *zap.Logger) *RevenueCollector {
	return &RevenueCollector{
		exchange: exchange,
		executor: executor,
		cfg:      cfg,
		logger:   logger,
	}
}

// Collect walks the current balances once. Failures on one balance are logged
// and do not stop the others; only a failed balance fetch is returned.
func (c *RevenueCollector) Collect(ctx context.Context) ([]*domain.Order, error) {
	balances, err := c.exchange.GetBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}

	var orders []*domain.Order
	for _, b := range balances {
		if !c.eligible(b) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return orders, err
		}

		order, err := c.collectOne(ctx, b)
		if err != nil {
			c.logger.Error("Revenue collection failed",
				zap.String("currency", b.CurrencySymbol), zap.Error(err))
			continue
		}
		if order != nil {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (c *RevenueCollector) eligible(b domain.Balance) bool {
	if b.Available <= 0 {
		return false
	}
	if b.CurrencySymbol == c.cfg.MainMarket {
		return false
	}
	return !c.cfg.IsHODL(b.CurrencySymbol) && !c.cfg.IsIgnoredStableCoin(b.CurrencySymbol)
}

func (c *RevenueCollector) collectOne(ctx context.Context, b domain.Balance) (*domain.Order, error) {
	symbol := domain.MarketSymbol(b.CurrencySymbol, c.cfg.MainMarket)

	ticker, err := c.exchange.GetMarketTicker(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get ticker %s: %w", symbol, err)
	}
	if ticker.BidRate <= 0 {
		return nil, nil
	}

	revenue := b.Available*ticker.BidRate - c.cfg.AmountPerInvest
	if revenue <= 0 {
		return nil, nil
	}

	market, err := c.exchange.GetMarket(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get market %s: %w", symbol, err)
	}

	quantity := revenue / ticker.BidRate
	if quantity <= market.MinTradeSize {
		c.logger.Debug("Revenue below min trade size",
			zap.String("market", symbol),
			zap.Float64("quantity", quantity),
			zap.Float64("min_trade_size", market.MinTradeSize))
		return nil, nil
	}

	order, err := c.executor.SellRevenue(ctx, market.Symbol, quantity, ticker.BidRate)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Placed revenue sell",
		zap.String("market", market.Symbol),
		zap.Float64("quantity", quantity),
		zap.Float64("revenue", revenue),
		zap.String("currency", c.cfg.MainMarket),
		zap.Bool("dry_run", order.DryRun))
	return order, nil
}
