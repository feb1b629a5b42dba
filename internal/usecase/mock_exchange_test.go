package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
)

type PlacedOrder struct {
	Symbol   string
	Quantity float64
	Limit    float64
}

// MockExchange is an in-memory exchange. Errors can be injected per operation
// ("get_balances") or per operation and symbol ("get_candles:AAA-USDT").
type MockExchange struct {
	mu sync.Mutex

	Markets   []domain.Market
	Summaries []domain.MarketSummary
	Tickers   map[string]domain.MarketTicker
	Candles   map[string][]domain.Candle
	Balances  []domain.Balance
	Errs      map[string]error

	Buys  []PlacedOrder
	Sells []PlacedOrder
	Calls map[string]int
}

func NewMockExchange() *MockExchange {
	return &MockExchange{
		Tickers: make(map[string]domain.MarketTicker),
		Candles: make(map[string][]domain.Candle),
		Errs:    make(map[string]error),
		Calls:   make(map[string]int),
	}
}

func (m *MockExchange) call(op, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[op]++
	if err, ok := m.Errs[op]; ok {
		return err
	}
	if symbol != "" {
		if err, ok := m.Errs[op+":"+symbol]; ok {
			return err
		}
	}
	return nil
}

func (m *MockExchange) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[op]
}

func (m *MockExchange) GetMarkets(ctx context.Context) ([]domain.Market, error) {
	if err := m.call("get_markets", ""); err != nil {
		return nil, err
	}
	return m.Markets, nil
}

func (m *MockExchange) GetMarket(ctx context.Context, symbol string) (*domain.Market, error) {
	if err := m.call("get_market", symbol); err != nil {
		return nil, err
	}
	for _, mk := range m.Markets {
		if mk.Symbol == symbol {
			return &mk, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMarketNotFound, symbol)
}

func (m *MockExchange) GetMarketSummaries(ctx context.Context) ([]domain.MarketSummary, error) {
	if err := m.call("get_market_summaries", ""); err != nil {
		return nil, err
	}
	return m.Summaries, nil
}

func (m *MockExchange) GetMarketTicker(ctx context.Context, symbol string) (*domain.MarketTicker, error) {
	if err := m.call("get_market_ticker", symbol); err != nil {
		return nil, err
	}
	t, ok := m.Tickers[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMarketNotFound, symbol)
	}
	return &t, nil
}

func (m *MockExchange) GetCandles(ctx context.Context, symbol string, interval domain.CandleInterval) ([]domain.Candle, error) {
	if err := m.call("get_candles", symbol); err != nil {
		return nil, err
	}
	return m.Candles[symbol], nil
}

func (m *MockExchange) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	if err := m.call("get_balances", ""); err != nil {
		return nil, err
	}
	return m.Balances, nil
}

func (m *MockExchange) GetBalance(ctx context.Context, currencySymbol string) (*domain.Balance, error) {
	if err := m.call("get_balance", currencySymbol); err != nil {
		return nil, err
	}
	for _, b := range m.Balances {
		if b.CurrencySymbol == currencySymbol {
			return &b, nil
		}
	}
	return &domain.Balance{CurrencySymbol: currencySymbol}, nil
}

func (m *MockExchange) BuyLimit(ctx context.Context, symbol string, quantity, limit float64) (*domain.Order, error) {
	if err := m.call("buy_limit", symbol); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Buys = append(m.Buys, PlacedOrder{Symbol: symbol, Quantity: quantity, Limit: limit})
	id := fmt.Sprintf("buy-%d", len(m.Buys))
	m.mu.Unlock()
	return &domain.Order{
		ID:           id,
		MarketSymbol: symbol,
		Direction:    domain.DirectionBuy,
		Type:         domain.OrderTypeLimit,
		TimeInForce:  domain.GoodTilCancelled,
		Quantity:     quantity,
		Limit:        limit,
		Status:       "OPEN",
	}, nil
}

func (m *MockExchange) SellLimit(ctx context.Context, symbol string, quantity, limit float64) (*domain.Order, error) {
	if err := m.call("sell_limit", symbol); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Sells = append(m.Sells, PlacedOrder{Symbol: symbol, Quantity: quantity, Limit: limit})
	id := fmt.Sprintf("sell-%d", len(m.Sells))
	m.mu.Unlock()
	return &domain.Order{
		ID:           id,
		MarketSymbol: symbol,
		Direction:    domain.DirectionSell,
		Type:         domain.OrderTypeLimit,
		TimeInForce:  domain.FillOrKill,
		Quantity:     quantity,
		Limit:        limit,
		Status:       "CLOSED",
	}, nil
}

// MemoryJournal keeps journal rows in slices.
type MemoryJournal struct {
	mu        sync.Mutex
	Decisions []*domain.DecisionRecord
	Orders    []*domain.Order
	Reports   []*domain.PortfolioReport
}

func (j *MemoryJournal) SaveDecision(ctx context.Context, rec *domain.DecisionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Decisions = append(j.Decisions, rec)
	return nil
}

func (j *MemoryJournal) ListDecisions(ctx context.Context, limit int) ([]*domain.DecisionRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Decisions, nil
}

func (j *MemoryJournal) SaveOrder(ctx context.Context, order *domain.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Orders = append(j.Orders, order)
	return nil
}

func (j *MemoryJournal) ListOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Orders, nil
}

func (j *MemoryJournal) SaveReport(ctx context.Context, report *domain.PortfolioReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Reports = append(j.Reports, report)
	return nil
}

func (j *MemoryJournal) ListReports(ctx context.Context, limit int) ([]*domain.PortfolioReport, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Reports, nil
}

type MockReporter struct {
	mock.Mock
}

func (r *MockReporter) Report(ctx context.Context, totalValue, referenceRate float64) error {
	args := r.Called(ctx, totalValue, referenceRate)
	return args.Error(0)
}

// StaticTickers is a TickerSource with fixed tickers.
type StaticTickers struct {
	mu         sync.Mutex
	Tickers    map[string]domain.MarketTicker
	Subscribed []string
}

func (s *StaticTickers) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *StaticTickers) Subscribe(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Subscribed = append(s.Subscribed, symbols...)
	return nil
}

func (s *StaticTickers) Ticker(symbol string) (*domain.MarketTicker, bool) {
	t, ok := s.Tickers[symbol]
	if !ok {
		return nil, false
	}
	return &t, true
}

func candles(closes ...float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func usdtMarket(base string, minTradeSize float64) domain.Market {
	return domain.Market{
		Symbol:              domain.MarketSymbol(base, "USDT"),
		BaseCurrencySymbol:  base,
		QuoteCurrencySymbol: "USDT",
		MinTradeSize:        minTradeSize,
		Status:              domain.StatusOnline,
	}
}

func testConfig() *usecase.Config {
	return &usecase.Config{
		AmountPerInvest:    50,
		HODL:               []string{"BTC"},
		Blacklist:          []string{"DASH"},
		MainMarket:         "USDT",
		MinNegativeTicks:   2,
		ExactPositiveTicks: 2,
		TickInterval:       domain.IntervalDay1,
		RefreshTimeout:     time.Hour,
		IgnoreStableCoins:  true,
		StableCoins:        []string{"USDC", "DAI"},
		EMA: usecase.EMAConfig{
			Default: usecase.EMAWindows{Short: 1, Long: 3},
		},
	}
}
