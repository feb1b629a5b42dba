package usecase

import (
	"time"

	"github.com/vitos/crypto_trade_ema/internal/domain"
)

// EMAWindows is a short/long EMA window pair.
type EMAWindows struct {
	Short int
	Long  int
}

type EMAOverride struct {
	Coins []string
	EMAWindows
}

type EMAConfig struct {
	Default  EMAWindows
	Override []EMAOverride
}

// Config holds the trading parameters shared by the policy, executor,
// revenue collector and loop.
type Config struct {
	AmountPerInvest       float64
	HODL                  []string
	Blacklist             []string
	MainMarket            string
	MinNegativeTicks      int
	ExactPositiveTicks    int
	TickInterval          domain.CandleInterval
	RefreshTimeout        time.Duration
	Debug                 bool
	EnableReporting       bool
	IgnoreTokenizedStocks bool
	IgnoreStableCoins     bool
	StableCoins           []string
	EMA                   EMAConfig
}

func (c *Config) IsHODL(currency string) bool        { return contains(c.HODL, currency) }
func (c *Config) IsBlacklisted(currency string) bool { return contains(c.Blacklist, currency) }

// IsIgnoredStableCoin reports whether currency is excluded as a stable coin.
func (c *Config) IsIgnoredStableCoin(currency string) bool {
	return c.IgnoreStableCoins && contains(c.StableCoins, currency)
}

// WindowsFor returns the EMA windows for a base currency. The first override
// listing the currency wins.
func (c *Config) WindowsFor(currency string) EMAWindows {
	for _, o := range c.EMA.Override {
		if contains(o.Coins, currency) {
			return o.EMAWindows
		}
	}
	return c.EMA.Default
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
