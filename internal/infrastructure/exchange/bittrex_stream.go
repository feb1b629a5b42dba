package exchange

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/flate"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"go.uber.org/zap"
)

const (
	signalRHub      = "c3"
	signalRProtocol = "1.5"
)

type cachedTicker struct {
	ticker domain.MarketTicker
	at     time.Time
}

// TickerStream is one live SignalR session against the Bittrex socket. It
// keeps the latest ticker per market and reconnects after read failures.
type TickerStream struct {
	endpoint       string
	maxAge         time.Duration
	reconnectDelay time.Duration
	httpClient     *http.Client
	dialer         *websocket.Dialer
	logger         *zap.Logger
	now            func() time.Time

	mu            sync.Mutex
	conn          *websocket.Conn
	invocation    int
	channels      map[string]bool
	tickers       map[string]cachedTicker
	lastHeartbeat time.Time
}

func NewTickerStream(endpoint string, maxAge, reconnectDelay time.Duration, logger *zap.Logger) *TickerStream {
	if endpoint == "" {
		endpoint = BittrexWSURL
	}
	return &TickerStream{
		endpoint:       strings.TrimSuffix(endpoint, "/"),
		maxAge:         maxAge,
		reconnectDelay: reconnectDelay,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		dialer:         websocket.DefaultDialer,
		logger:         logger,
		now:            time.Now,
		channels:       map[string]bool{"heartbeat": true},
		tickers:        make(map[string]cachedTicker),
	}
}

// Ticker returns the cached ticker for symbol if it is younger than maxAge.
func (s *TickerStream) Ticker(symbol string) (*domain.MarketTicker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.tickers[symbol]
	if !ok || s.now().Sub(c.at) > s.maxAge {
		return nil, false
	}
	t := c.ticker
	return &t, true
}

// LastHeartbeat is the time of the last heartbeat frame.
func (s *TickerStream) LastHeartbeat() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeartbeat
}

// Subscribe adds ticker channels for symbols. Channels are remembered and
// re-subscribed after a reconnect.
func (s *TickerStream) Subscribe(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, sym := range symbols {
		ch := "ticker_" + sym
		if !s.channels[ch] {
			s.channels[ch] = true
			fresh = append(fresh, ch)
		}
	}
	if s.conn == nil || len(fresh) == 0 {
		return nil
	}
	return s.subscribe(fresh)
}

// subscribe must be called with mu held.
func (s *TickerStream) subscribe(channels []string) error {
	s.invocation++
	msg := map[string]interface{}{
		"H": signalRHub,
		"M": "Subscribe",
		"A": []interface{}{channels},
		"I": s.invocation,
	}
	return s.conn.WriteJSON(msg)
}

// Run keeps a session open until ctx is cancelled.
func (s *TickerStream) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Ticker stream disconnected", zap.Error(err), zap.Duration("retry_in", s.reconnectDelay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *TickerStream) session(ctx context.Context) error {
	token, err := s.negotiate(ctx)
	if err != nil {
		return fmt.Errorf("negotiate: %w", err)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.connectURL(token), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	channels := make([]string, 0, len(s.channels))
	for ch := range s.channels {
		channels = append(channels, ch)
	}
	err = s.subscribe(channels)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info("Ticker stream connected", zap.Int("channels", len(channels)))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := s.handle(message); err != nil {
			s.logger.Debug("Skipping stream message", zap.Error(err))
		}
	}
}

func connectionData() string {
	return fmt.Sprintf(`[{"name":"%s"}]`, signalRHub)
}

func (s *TickerStream) negotiate(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("clientProtocol", signalRProtocol)
	q.Set("connectionData", connectionData())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/negotiate?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		ConnectionToken string `json:"ConnectionToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.ConnectionToken, nil
}

func (s *TickerStream) connectURL(token string) string {
	q := url.Values{}
	q.Set("transport", "webSockets")
	q.Set("clientProtocol", signalRProtocol)
	q.Set("connectionToken", token)
	q.Set("connectionData", connectionData())

	base := s.endpoint
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/connect?" + q.Encode()
}

type hubFrame struct {
	M []struct {
		H string            `json:"H"`
		M string            `json:"M"`
		A []json.RawMessage `json:"A"`
	} `json:"M"`
}

func (s *TickerStream) handle(message []byte) error {
	var frame hubFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return err
	}

	for _, m := range frame.M {
		switch strings.ToLower(m.M) {
		case "heartbeat":
			s.mu.Lock()
			s.lastHeartbeat = s.now()
			s.mu.Unlock()
		case "ticker":
			if len(m.A) == 0 {
				continue
			}
			var raw tickerResponse
			if err := decodePayload(m.A[0], &raw); err != nil {
				return fmt.Errorf("ticker payload: %w", err)
			}
			s.mu.Lock()
			s.tickers[raw.Symbol] = cachedTicker{ticker: raw.toDomain(), at: s.now()}
			s.mu.Unlock()
		}
	}
	return nil
}

// decodePayload unpacks a base64 encoded, raw-deflated JSON argument.
func decodePayload(arg json.RawMessage, out interface{}) error {
	var b64 string
	if err := json.Unmarshal(arg, &b64); err != nil {
		return err
	}
	compressed, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	return json.NewDecoder(r).Decode(out)
}
