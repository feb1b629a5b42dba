package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
	"gopkg.in/yaml.v3"
)

type EMAPair struct {
	S int `yaml:"s"`
	L int `yaml:"l"`
}

type EMAOverride struct {
	Coins []string `yaml:"coins"`
	S     int      `yaml:"s"`
	L     int      `yaml:"l"`
}

type Config struct {
	AmountPerInvest       float64  `yaml:"amount_per_invest"`
	HODL                  []string `yaml:"hodl"`
	Blacklist             []string `yaml:"blacklist"`
	MainMarket            string   `yaml:"main_market"`
	MinNegativeTicks      int      `yaml:"min_negative_ticks"`
	ExactPositiveTicks    int      `yaml:"exact_positive_ticks"`
	TickInterval          string   `yaml:"tick_interval"`
	RefreshTimeoutMs      int      `yaml:"refresh_timeout_ms"`
	Debug                 bool     `yaml:"debug"`
	EnableReporting       bool     `yaml:"enable_reporting"`
	IgnoreTokenizedStocks bool     `yaml:"ignore_tokenized_stocks"`
	StableCoins           struct {
		Ignore bool     `yaml:"ignore"`
		Coins  []string `yaml:"coins"`
	} `yaml:"stable_coins"`
	EMA struct {
		Default  EMAPair       `yaml:"default"`
		Override []EMAOverride `yaml:"override"`
	} `yaml:"ema"`

	Exchange struct {
		RESTEndpoint      string `yaml:"rest_endpoint"`
		WSEndpoint        string `yaml:"ws_endpoint"`
		CallTimeoutMs     int    `yaml:"call_timeout_ms"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
		UseAwards         bool   `yaml:"use_awards"`
	} `yaml:"exchange"`
	Stream struct {
		Enabled          bool `yaml:"enabled"`
		MaxTickerAgeMs   int  `yaml:"max_ticker_age_ms"`
		ReconnectDelayMs int  `yaml:"reconnect_delay_ms"`
	} `yaml:"stream"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Reporting struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"reporting"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// Credentials are read from the environment, optionally via a .env file.
type Credentials struct {
	APIKey    string `env:"BITTREX_API_KEY, required"`
	APISecret string `env:"BITTREX_API_SECRET, required"`
}

// Load reads, defaults and validates the YAML config at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Default mirrors the values the bot shipped with.
func Default() *Config {
	cfg := &Config{
		AmountPerInvest:    50,
		HODL:               []string{"BTC", "ETH"},
		Blacklist:          []string{"DASH", "GRIN", "XMR", "ZEC"},
		MainMarket:         "USDT",
		MinNegativeTicks:   2,
		ExactPositiveTicks: 2,
		TickInterval:       string(domain.IntervalDay1),
		RefreshTimeoutMs:   180000,
	}
	cfg.StableCoins.Coins = []string{"USDT", "USDC", "TUSD", "DAI", "PAX", "BUSD", "USD", "EUR"}
	cfg.EMA.Default = EMAPair{S: 12, L: 26}
	cfg.Exchange.RESTEndpoint = "https://api.bittrex.com/v3"
	cfg.Exchange.WSEndpoint = "https://socket-v3.bittrex.com/signalr"
	cfg.Exchange.CallTimeoutMs = 15000
	cfg.Exchange.RequestsPerMinute = 40
	cfg.Stream.MaxTickerAgeMs = 10000
	cfg.Stream.ReconnectDelayMs = 5000
	cfg.Journal.Path = "bot.db"
	cfg.Logging.Level = "info"
	cfg.Logging.Encoding = "json"
	cfg.Server.Port = 8080
	return cfg
}

func (c *Config) Validate() error {
	var errs []error
	if c.AmountPerInvest <= 0 {
		errs = append(errs, errors.New("amount_per_invest must be positive"))
	}
	if c.MainMarket == "" {
		errs = append(errs, errors.New("main_market is required"))
	}
	if c.MinNegativeTicks < 0 || c.ExactPositiveTicks < 0 {
		errs = append(errs, errors.New("tick thresholds must not be negative"))
	}
	if !domain.CandleInterval(c.TickInterval).Valid() {
		errs = append(errs, fmt.Errorf("unknown tick_interval %q", c.TickInterval))
	}
	if c.RefreshTimeoutMs <= 0 {
		errs = append(errs, errors.New("refresh_timeout_ms must be positive"))
	}
	if c.EMA.Default.S <= 0 || c.EMA.Default.L <= 0 {
		errs = append(errs, errors.New("ema default windows must be positive"))
	}
	for i, o := range c.EMA.Override {
		if o.S <= 0 || o.L <= 0 || len(o.Coins) == 0 {
			errs = append(errs, fmt.Errorf("ema override %d needs coins and positive windows", i))
		}
	}
	if c.EnableReporting && c.Reporting.WebhookURL == "" {
		errs = append(errs, errors.New("reporting.webhook_url is required when enable_reporting is set"))
	}
	return errors.Join(errs...)
}

// Trading converts the file config into the parameters the use cases run on.
func (c *Config) Trading() *usecase.Config {
	tc := &usecase.Config{
		AmountPerInvest:       c.AmountPerInvest,
		HODL:                  c.HODL,
		Blacklist:             c.Blacklist,
		MainMarket:            c.MainMarket,
		MinNegativeTicks:      c.MinNegativeTicks,
		ExactPositiveTicks:    c.ExactPositiveTicks,
		TickInterval:          domain.CandleInterval(c.TickInterval),
		RefreshTimeout:        time.Duration(c.RefreshTimeoutMs) * time.Millisecond,
		Debug:                 c.Debug,
		EnableReporting:       c.EnableReporting,
		IgnoreTokenizedStocks: c.IgnoreTokenizedStocks,
		IgnoreStableCoins:     c.StableCoins.Ignore,
		StableCoins:           c.StableCoins.Coins,
	}
	tc.EMA.Default = usecase.EMAWindows{Short: c.EMA.Default.S, Long: c.EMA.Default.L}
	for _, o := range c.EMA.Override {
		tc.EMA.Override = append(tc.EMA.Override, usecase.EMAOverride{
			Coins:      o.Coins,
			EMAWindows: usecase.EMAWindows{Short: o.S, Long: o.L},
		})
	}
	return tc
}

func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Exchange.CallTimeoutMs) * time.Millisecond
}

// LoadCredentials loads .env files if present and reads the API credentials
// from the environment.
func LoadCredentials(ctx context.Context, envFiles ...string) (*Credentials, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var creds Credentials
	if err := envconfig.Process(ctx, &creds); err != nil {
		return nil, fmt.Errorf("no BITTREX_API_KEY and/or BITTREX_API_SECRET found: %w", err)
	}
	return &creds, nil
}
