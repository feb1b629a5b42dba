package domain

import (
	"context"
	"errors"
)

var (
	ErrMarketNotFound    = errors.New("market not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Exchange defines the operations the bot needs from a crypto exchange.
type Exchange interface {
	GetMarkets(ctx context.Context) ([]Market, error)
	GetMarket(ctx context.Context, symbol string) (*Market, error)
	GetMarketSummaries(ctx context.Context) ([]MarketSummary, error)
	GetMarketTicker(ctx context.Context, symbol string) (*MarketTicker, error)
	GetCandles(ctx context.Context, symbol string, interval CandleInterval) ([]Candle, error)
	GetBalances(ctx context.Context) ([]Balance, error)
	GetBalance(ctx context.Context, currencySymbol string) (*Balance, error)

	BuyLimit(ctx context.Context, symbol string, quantity, limit float64) (*Order, error)
	SellLimit(ctx context.Context, symbol string, quantity, limit float64) (*Order, error)
}

// TickerSource serves live tickers pushed by a streaming session.
type TickerSource interface {
	Run(ctx context.Context) error
	Subscribe(symbols []string) error
	Ticker(symbol string) (*MarketTicker, bool)
}

// Reporter publishes the portfolio value at the end of a cycle.
type Reporter interface {
	Report(ctx context.Context, totalValue, referenceRate float64) error
}

// JournalRepository stores an audit trail of decisions, orders and reports.
// Nothing in the decision path reads it back.
type JournalRepository interface {
	SaveDecision(ctx context.Context, rec *DecisionRecord) error
	ListDecisions(ctx context.Context, limit int) ([]*DecisionRecord, error)

	SaveOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context, limit int) ([]*Order, error)

	SaveReport(ctx context.Context, report *PortfolioReport) error
	ListReports(ctx context.Context, limit int) ([]*PortfolioReport, error)
}
