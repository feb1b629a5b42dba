package exchange

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/vitos/crypto_trade_ema/internal/domain"
)

// number decodes Bittrex decimals, which arrive as JSON strings.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type marketResponse struct {
	Symbol              string   `json:"symbol"`
	BaseCurrencySymbol  string   `json:"baseCurrencySymbol"`
	QuoteCurrencySymbol string   `json:"quoteCurrencySymbol"`
	MinTradeSize        number   `json:"minTradeSize"`
	Precision           int      `json:"precision"`
	Status              string   `json:"status"`
	Tags                []string `json:"tags"`
}

func (m marketResponse) toDomain() domain.Market {
	return domain.Market{
		Symbol:              m.Symbol,
		BaseCurrencySymbol:  m.BaseCurrencySymbol,
		QuoteCurrencySymbol: m.QuoteCurrencySymbol,
		MinTradeSize:        float64(m.MinTradeSize),
		Precision:           m.Precision,
		Status:              domain.MarketStatus(m.Status),
		Tags:                m.Tags,
	}
}

type summaryResponse struct {
	Symbol        string `json:"symbol"`
	High          number `json:"high"`
	Low           number `json:"low"`
	Volume        number `json:"volume"`
	QuoteVolume   number `json:"quoteVolume"`
	PercentChange number `json:"percentChange"`
}

type tickerResponse struct {
	Symbol        string `json:"symbol"`
	LastTradeRate number `json:"lastTradeRate"`
	BidRate       number `json:"bidRate"`
	AskRate       number `json:"askRate"`
}

func (t tickerResponse) toDomain() domain.MarketTicker {
	return domain.MarketTicker{
		Symbol:        t.Symbol,
		LastTradeRate: float64(t.LastTradeRate),
		BidRate:       float64(t.BidRate),
		AskRate:       float64(t.AskRate),
	}
}

type candleResponse struct {
	StartsAt    time.Time `json:"startsAt"`
	Open        number    `json:"open"`
	High        number    `json:"high"`
	Low         number    `json:"low"`
	Close       number    `json:"close"`
	Volume      number    `json:"volume"`
	QuoteVolume number    `json:"quoteVolume"`
}

type balanceResponse struct {
	CurrencySymbol string    `json:"currencySymbol"`
	Total          number    `json:"total"`
	Available      number    `json:"available"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (b balanceResponse) toDomain() domain.Balance {
	return domain.Balance{
		CurrencySymbol: b.CurrencySymbol,
		Total:          float64(b.Total),
		Available:      float64(b.Available),
		UpdatedAt:      b.UpdatedAt,
	}
}

type newOrderRequest struct {
	MarketSymbol  string                `json:"marketSymbol"`
	Direction     domain.OrderDirection `json:"direction"`
	Type          domain.OrderType      `json:"type"`
	Quantity      string                `json:"quantity"`
	Limit         string                `json:"limit"`
	TimeInForce   domain.TimeInForce    `json:"timeInForce"`
	ClientOrderID string                `json:"clientOrderId"`
	UseAwards     bool                  `json:"useAwards"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	MarketSymbol  string    `json:"marketSymbol"`
	Direction     string    `json:"direction"`
	Type          string    `json:"type"`
	Quantity      number    `json:"quantity"`
	Limit         number    `json:"limit"`
	TimeInForce   string    `json:"timeInForce"`
	ClientOrderID string    `json:"clientOrderId"`
	FillQuantity  number    `json:"fillQuantity"`
	Commission    number    `json:"commission"`
	Proceeds      number    `json:"proceeds"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (o orderResponse) toDomain() *domain.Order {
	return &domain.Order{
		ID:            o.ID,
		ClientOrderID: o.ClientOrderID,
		MarketSymbol:  o.MarketSymbol,
		Direction:     domain.OrderDirection(o.Direction),
		Type:          domain.OrderType(o.Type),
		TimeInForce:   domain.TimeInForce(o.TimeInForce),
		Quantity:      float64(o.Quantity),
		Limit:         float64(o.Limit),
		FillQuantity:  float64(o.FillQuantity),
		Commission:    float64(o.Commission),
		Proceeds:      float64(o.Proceeds),
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
}

var _ json.Unmarshaler = (*number)(nil)
