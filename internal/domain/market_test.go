package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/crypto_trade_ema/internal/domain"
)

func TestMarketSymbol(t *testing.T) {
	assert.Equal(t, "ETH-USDT", domain.MarketSymbol("ETH", "USDT"))
	assert.Equal(t, "ETH", domain.BaseCurrency("ETH-USDT"))
	assert.Equal(t, "ETH", domain.BaseCurrency("ETH"))
}

func TestMarket_HasTag(t *testing.T) {
	m := domain.Market{Tags: []string{"FOO", domain.TagTokenizedSecurity}}
	assert.True(t, m.HasTag(domain.TagTokenizedSecurity))
	assert.False(t, m.HasTag("BAR"))
	assert.False(t, domain.Market{}.HasTag(domain.TagTokenizedSecurity))
}

func TestCandleInterval_Valid(t *testing.T) {
	for _, i := range []domain.CandleInterval{domain.IntervalMinute1, domain.IntervalMinute5, domain.IntervalHour1, domain.IntervalDay1} {
		assert.True(t, i.Valid(), i)
	}
	assert.False(t, domain.CandleInterval("WEEK_1").Valid())
	assert.False(t, domain.CandleInterval("").Valid())
}
