package domain

import (
	"strings"
	"time"
)

type MarketStatus string

const (
	StatusOnline  MarketStatus = "ONLINE"
	StatusOffline MarketStatus = "OFFLINE"
)

// TagTokenizedSecurity marks markets for tokenized stocks.
const TagTokenizedSecurity = "TOKENIZED_SECURITY"

type CandleInterval string

const (
	IntervalMinute1 CandleInterval = "MINUTE_1"
	IntervalMinute5 CandleInterval = "MINUTE_5"
	IntervalHour1   CandleInterval = "HOUR_1"
	IntervalDay1    CandleInterval = "DAY_1"
)

func (i CandleInterval) Valid() bool {
	switch i {
	case IntervalMinute1, IntervalMinute5, IntervalHour1, IntervalDay1:
		return true
	}
	return false
}

// Market represents a tradable pair, e.g. "ETH-USDT".
type Market struct {
	Symbol              string       `json:"symbol"`
	BaseCurrencySymbol  string       `json:"baseCurrencySymbol"`
	QuoteCurrencySymbol string       `json:"quoteCurrencySymbol"`
	MinTradeSize        float64      `json:"minTradeSize"`
	Precision           int          `json:"precision"`
	Status              MarketStatus `json:"status"`
	Tags                []string     `json:"tags"`
}

func (m Market) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type MarketSummary struct {
	Symbol        string  `json:"symbol"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
	QuoteVolume   float64 `json:"quoteVolume"`
	PercentChange float64 `json:"percentChange"`
}

type MarketTicker struct {
	Symbol        string  `json:"symbol"`
	LastTradeRate float64 `json:"lastTradeRate"`
	BidRate       float64 `json:"bidRate"`
	AskRate       float64 `json:"askRate"`
}

// Candle is one OHLCV bar. Series are ordered oldest first.
type Candle struct {
	StartsAt    time.Time `json:"startsAt"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	QuoteVolume float64   `json:"quoteVolume"`
}

type Balance struct {
	CurrencySymbol string    `json:"currencySymbol"`
	Total          float64   `json:"total"`
	Available      float64   `json:"available"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MarketSymbol joins base and quote currency the way the exchange names markets.
func MarketSymbol(base, quote string) string {
	return base + "-" + quote
}

// BaseCurrency returns "ETH" for "ETH-USDT".
func BaseCurrency(marketSymbol string) string {
	base, _, _ := strings.Cut(marketSymbol, "-")
	return base
}
