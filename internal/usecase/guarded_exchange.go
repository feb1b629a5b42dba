package usecase

import (
	"context"
	"time"

	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/metrics"
)

// guardedExchange wraps every exchange call with the throttle and a per-call
// deadline. Tickers come from the live stream when it has a fresh one.
type guardedExchange struct {
	next        domain.Exchange
	throttle    Throttle
	callTimeout time.Duration
	tickers     domain.TickerSource
}

func newGuardedExchange(next domain.Exchange, throttle Throttle, callTimeout time.Duration, tickers domain.TickerSource) *guardedExchange {
	if throttle == nil {
		throttle = NoThrottle{}
	}
	return &guardedExchange{
		next:        next,
		throttle:    throttle,
		callTimeout: callTimeout,
		tickers:     tickers,
	}
}

func (g *guardedExchange) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := g.throttle.Wait(ctx); err != nil {
		return err
	}
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	metrics.GatewayCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayErrorsTotal.WithLabelValues(op).Inc()
	}
	return err
}

func (g *guardedExchange) GetMarkets(ctx context.Context) (markets []domain.Market, err error) {
	err = g.do(ctx, "get_markets", func(ctx context.Context) error {
		markets, err = g.next.GetMarkets(ctx)
		return err
	})
	return markets, err
}

func (g *guardedExchange) GetMarket(ctx context.Context, symbol string) (market *domain.Market, err error) {
	err = g.do(ctx, "get_market", func(ctx context.Context) error {
		market, err = g.next.GetMarket(ctx, symbol)
		return err
	})
	return market, err
}

func (g *guardedExchange) GetMarketSummaries(ctx context.Context) (summaries []domain.MarketSummary, err error) {
	err = g.do(ctx, "get_market_summaries", func(ctx context.Context) error {
		summaries, err = g.next.GetMarketSummaries(ctx)
		return err
	})
	return summaries, err
}

func (g *guardedExchange) GetMarketTicker(ctx context.Context, symbol string) (ticker *domain.MarketTicker, err error) {
	if g.tickers != nil {
		if t, ok := g.tickers.Ticker(symbol); ok {
			return t, nil
		}
	}
	err = g.do(ctx, "get_market_ticker", func(ctx context.Context) error {
		ticker, err = g.next.GetMarketTicker(ctx, symbol)
		return err
	})
	return ticker, err
}

func (g *guardedExchange) GetCandles(ctx context.Context, symbol string, interval domain.CandleInterval) (candles []domain.Candle, err error) {
	err = g.do(ctx, "get_candles", func(ctx context.Context) error {
		candles, err = g.next.GetCandles(ctx, symbol, interval)
		return err
	})
	return candles, err
}

func (g *guardedExchange) GetBalances(ctx context.Context) (balances []domain.Balance, err error) {
	err = g.do(ctx, "get_balances", func(ctx context.Context) error {
		balances, err = g.next.GetBalances(ctx)
		return err
	})
	return balances, err
}

func (g *guardedExchange) GetBalance(ctx context.Context, currencySymbol string) (balance *domain.Balance, err error) {
	err = g.do(ctx, "get_balance", func(ctx context.Context) error {
		balance, err = g.next.GetBalance(ctx, currencySymbol)
		return err
	})
	return balance, err
}

func (g *guardedExchange) BuyLimit(ctx context.Context, symbol string, quantity, limit float64) (order *domain.Order, err error) {
	err = g.do(ctx, "buy_limit", func(ctx context.Context) error {
		order, err = g.next.BuyLimit(ctx, symbol, quantity, limit)
		return err
	})
	return order, err
}

func (g *guardedExchange) SellLimit(ctx context.Context, symbol string, quantity, limit float64) (order *domain.Order, err error) {
	err = g.do(ctx, "sell_limit", func(ctx context.Context) error {
		order, err = g.next.SellLimit(ctx, symbol, quantity, limit)
		return err
	})
	return order, err
}
