package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/crypto_trade_ema/internal/domain"
)

const (
	BittrexBaseURL = "https://api.bittrex.com/v3"
	BittrexWSURL   = "https://socket-v3.bittrex.com/signalr"
)

// APIError is a non-2xx answer from the exchange.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("bittrex api error %d %s: %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("bittrex api error %d %s", e.StatusCode, e.Code)
}

// BittrexAdapter implements domain.Exchange on the Bittrex v3 REST API.
type BittrexAdapter struct {
	apiKey    string
	apiSecret string
	baseURL   string
	useAwards bool
	client    *http.Client
	now       func() time.Time
}

func NewBittrexAdapter(apiKey, apiSecret, baseURL string, useAwards bool) *BittrexAdapter {
	if baseURL == "" {
		baseURL = BittrexBaseURL
	}
	return &BittrexAdapter{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		useAwards: useAwards,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
}

// --- REST API ---

// sign follows https://bittrex.github.io/api/v3#topic-Authentication:
// HMAC-SHA512 over timestamp + uri + method + content hash.
func (b *BittrexAdapter) sign(timestamp, uri, method, contentHash string) string {
	h := hmac.New(sha512.New, []byte(b.apiSecret))
	h.Write([]byte(timestamp + uri + method + contentHash))
	return hex.EncodeToString(h.Sum(nil))
}

func (b *BittrexAdapter) sendRequest(ctx context.Context, method, path string, payload interface{}, authenticated bool) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
	}

	uri := b.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, uri, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if authenticated {
		timestamp := strconv.FormatInt(b.now().UnixMilli(), 10)
		sum := sha512.Sum512(body)
		contentHash := hex.EncodeToString(sum[:])

		req.Header.Set("Api-Key", b.apiKey)
		req.Header.Set("Api-Timestamp", timestamp)
		req.Header.Set("Api-Content-Hash", contentHash)
		req.Header.Set("Api-Signature", b.sign(timestamp, uri, method, contentHash))
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Detail = string(respBody)
		}
		return nil, apiErr
	}

	return respBody, nil
}

func (b *BittrexAdapter) getJSON(ctx context.Context, path string, authenticated bool, out interface{}) error {
	resp, err := b.sendRequest(ctx, http.MethodGet, path, nil, authenticated)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (b *BittrexAdapter) GetMarkets(ctx context.Context) ([]domain.Market, error) {
	var raw []marketResponse
	if err := b.getJSON(ctx, "/markets", false, &raw); err != nil {
		return nil, err
	}
	markets := make([]domain.Market, 0, len(raw))
	for _, m := range raw {
		markets = append(markets, m.toDomain())
	}
	return markets, nil
}

func (b *BittrexAdapter) GetMarket(ctx context.Context, symbol string) (*domain.Market, error) {
	var raw marketResponse
	if err := b.getJSON(ctx, "/markets/"+url.PathEscape(symbol), false, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", symbol, domain.ErrMarketNotFound)
		}
		return nil, err
	}
	m := raw.toDomain()
	return &m, nil
}

func (b *BittrexAdapter) GetMarketSummaries(ctx context.Context) ([]domain.MarketSummary, error) {
	var raw []summaryResponse
	if err := b.getJSON(ctx, "/markets/summaries", false, &raw); err != nil {
		return nil, err
	}
	summaries := make([]domain.MarketSummary, 0, len(raw))
	for _, s := range raw {
		summaries = append(summaries, domain.MarketSummary{
			Symbol:        s.Symbol,
			High:          float64(s.High),
			Low:           float64(s.Low),
			Volume:        float64(s.Volume),
			QuoteVolume:   float64(s.QuoteVolume),
			PercentChange: float64(s.PercentChange),
		})
	}
	return summaries, nil
}

func (b *BittrexAdapter) GetMarketTicker(ctx context.Context, symbol string) (*domain.MarketTicker, error) {
	var raw tickerResponse
	if err := b.getJSON(ctx, "/markets/"+url.PathEscape(symbol)+"/ticker", false, &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", symbol, domain.ErrMarketNotFound)
		}
		return nil, err
	}
	t := raw.toDomain()
	return &t, nil
}

func (b *BittrexAdapter) GetCandles(ctx context.Context, symbol string, interval domain.CandleInterval) ([]domain.Candle, error) {
	path := fmt.Sprintf("/markets/%s/candles/%s/recent", url.PathEscape(symbol), interval)
	var raw []candleResponse
	if err := b.getJSON(ctx, path, false, &raw); err != nil {
		return nil, err
	}

	// Bittrex returns candles oldest first.
	candles := make([]domain.Candle, 0, len(raw))
	for _, c := range raw {
		candles = append(candles, domain.Candle{
			StartsAt:    c.StartsAt,
			Open:        float64(c.Open),
			High:        float64(c.High),
			Low:         float64(c.Low),
			Close:       float64(c.Close),
			Volume:      float64(c.Volume),
			QuoteVolume: float64(c.QuoteVolume),
		})
	}
	return candles, nil
}

func (b *BittrexAdapter) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	var raw []balanceResponse
	if err := b.getJSON(ctx, "/balances", true, &raw); err != nil {
		return nil, err
	}
	balances := make([]domain.Balance, 0, len(raw))
	for _, r := range raw {
		balances = append(balances, r.toDomain())
	}
	return balances, nil
}

// GetBalance returns a zero balance for currencies the account never held.
func (b *BittrexAdapter) GetBalance(ctx context.Context, currencySymbol string) (*domain.Balance, error) {
	var raw balanceResponse
	if err := b.getJSON(ctx, "/balances/"+url.PathEscape(currencySymbol), true, &raw); err != nil {
		if isNotFound(err) {
			return &domain.Balance{CurrencySymbol: currencySymbol}, nil
		}
		return nil, err
	}
	balance := raw.toDomain()
	return &balance, nil
}

// BuyLimit places a good-til-cancelled limit buy.
func (b *BittrexAdapter) BuyLimit(ctx context.Context, symbol string, quantity, limit float64) (*domain.Order, error) {
	return b.placeOrder(ctx, symbol, domain.DirectionBuy, domain.GoodTilCancelled, quantity, limit)
}

// SellLimit places a fill-or-kill limit sell.
func (b *BittrexAdapter) SellLimit(ctx context.Context, symbol string, quantity, limit float64) (*domain.Order, error) {
	return b.placeOrder(ctx, symbol, domain.DirectionSell, domain.FillOrKill, quantity, limit)
}

func (b *BittrexAdapter) placeOrder(ctx context.Context, symbol string, direction domain.OrderDirection, tif domain.TimeInForce, quantity, limit float64) (*domain.Order, error) {
	payload := newOrderRequest{
		MarketSymbol:  symbol,
		Direction:     direction,
		Type:          domain.OrderTypeLimit,
		Quantity:      strconv.FormatFloat(quantity, 'f', -1, 64),
		Limit:         strconv.FormatFloat(limit, 'f', -1, 64),
		TimeInForce:   tif,
		ClientOrderID: uuid.NewString(),
		UseAwards:     b.useAwards,
	}

	resp, err := b.sendRequest(ctx, http.MethodPost, "/orders", payload, true)
	if err != nil {
		return nil, err
	}

	var raw orderResponse
	if err := json.Unmarshal(resp, &raw); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return raw.toDomain(), nil
}
