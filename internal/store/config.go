package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeLive   = "LIVE"
	ModeDryRun = "DRY_RUN"

	// MinLoopInterval bounds the call rate against the broker.
	MinLoopInterval = 500 * time.Millisecond
)

type Config struct {
	Mode                string   `yaml:"mode"`
	RunMode             string   `yaml:"run_mode"`
	Symbol              string   `yaml:"symbol"`
	LoopIntervalSeconds float64  `yaml:"loop_interval_seconds"`
	EndTime             string   `yaml:"end_time"`
	MetricsAddr         string   `yaml:"metrics_addr"`
	Market              Market   `yaml:"market"`
	Orders              Orders   `yaml:"orders"`
	Fill                Fill     `yaml:"fill"`
	Quote               Quote    `yaml:"quote"`
	Ledger              Ledger   `yaml:"ledger"`
	Telegram            Telegram `yaml:"-"`
	Kite                Kite     `yaml:"-"`
}

type Market struct {
	Open     string   `yaml:"open"`
	Close    string   `yaml:"close"`
	Holidays []string `yaml:"holidays"`
}

// Orders carries the broker order constants used on every placement.
type Orders struct {
	Exchange  string `yaml:"exchange"`
	Variety   string `yaml:"variety"`
	Product   string `yaml:"product"`
	OrderType string `yaml:"order_type"`
	Validity  string `yaml:"validity"`
}

type Fill struct {
	FillAfterSeconds   float64 `yaml:"fill_after_seconds"`
	ExpireAfterSeconds float64 `yaml:"expire_after_seconds"`
}

type Quote struct {
	Retries   int `yaml:"retries"`
	BackoffMs int `yaml:"backoff_ms"`
}

type Ledger struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
	// ServiceAccountJSON is raw or base64-encoded JSON, env only.
	ServiceAccountJSON string `yaml:"-"`
}

type Telegram struct {
	BotToken string
	ChatID   string
}

type Kite struct {
	APIKey      string
	AccessToken string
}

func Defaults() Config {
	return Config{
		Mode:                ModeLive,
		RunMode:             "EARLY",
		Symbol:              "GOLDBEES",
		LoopIntervalSeconds: 1,
		EndTime:             "15:30",
		Market: Market{
			Open:  "09:15",
			Close: "15:30",
		},
		Orders: Orders{
			Exchange:  "NSE",
			Variety:   "regular",
			Product:   "CNC",
			OrderType: "MARKET",
			Validity:  "DAY",
		},
		Fill:   Fill{FillAfterSeconds: 2, ExpireAfterSeconds: 120},
		Quote:  Quote{Retries: 3, BackoffMs: 500},
		Ledger: Ledger{Dir: "logs", SheetName: "Trades"},
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDryRun && c.Mode != ModeLive {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if strings.TrimSpace(c.Symbol) == "" {
		return errors.New("symbol cannot be empty")
	}
	for name, v := range map[string]string{"end_time": c.EndTime, "market.open": c.Market.Open, "market.close": c.Market.Close} {
		if _, _, err := ParseHHMM(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for _, h := range c.Market.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return fmt.Errorf("market.holidays: invalid date '%s'", h)
		}
	}
	if c.LoopIntervalSeconds <= 0 {
		return fmt.Errorf("loop_interval_seconds must be > 0, got %.2f", c.LoopIntervalSeconds)
	}
	if c.Fill.FillAfterSeconds <= 0 || c.Fill.ExpireAfterSeconds <= 0 {
		return errors.New("fill.fill_after_seconds and fill.expire_after_seconds must be > 0")
	}
	if c.Fill.FillAfterSeconds >= c.Fill.ExpireAfterSeconds {
		return fmt.Errorf("fill.fill_after_seconds (%.1f) must be below fill.expire_after_seconds (%.1f)",
			c.Fill.FillAfterSeconds, c.Fill.ExpireAfterSeconds)
	}
	if c.Quote.Retries < 1 {
		return fmt.Errorf("quote.retries must be >= 1, got %d", c.Quote.Retries)
	}
	if c.Quote.BackoffMs < 0 {
		return fmt.Errorf("quote.backoff_ms must be >= 0, got %d", c.Quote.BackoffMs)
	}
	return nil
}

// LoopInterval is the configured cadence clamped to MinLoopInterval.
func (c *Config) LoopInterval() time.Duration {
	d := time.Duration(c.LoopIntervalSeconds * float64(time.Second))
	if d < MinLoopInterval {
		return MinLoopInterval
	}
	return d
}

func (c *Config) FillAfter() time.Duration {
	return time.Duration(c.Fill.FillAfterSeconds * float64(time.Second))
}

func (c *Config) ExpireAfter() time.Duration {
	return time.Duration(c.Fill.ExpireAfterSeconds * float64(time.Second))
}

func (c *Config) QuoteBackoff() time.Duration {
	return time.Duration(c.Quote.BackoffMs) * time.Millisecond
}

// LoadConfig reads the YAML file at path (a missing file yields defaults),
// applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	c := Defaults()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&c)
	c.Mode = strings.ToUpper(c.Mode)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyEnv(c *Config) {
	setString(&c.Mode, "TRADER_MODE")
	setString(&c.Symbol, "TICKER")
	setString(&c.RunMode, "RUN_MODE")
	setString(&c.EndTime, "END_TIME_IST")
	setString(&c.MetricsAddr, "METRICS_ADDR")
	setString(&c.Ledger.Dir, "TRADER_LOG_DIR")
	setString(&c.Ledger.SpreadsheetID, "SPREADSHEET_ID")
	setString(&c.Ledger.SheetName, "SHEET_NAME")
	if v := os.Getenv("LOOP_FREQ_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.LoopIntervalSeconds = f
		}
	}
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Ledger.RetentionDays = n
		}
	}

	c.Ledger.ServiceAccountJSON = os.Getenv("GCP_SERVICE_ACCOUNT_JSON")
	c.Telegram = Telegram{BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"), ChatID: os.Getenv("TELEGRAM_CHAT_ID")}
	c.Kite = Kite{APIKey: os.Getenv("KITE_API_KEY"), AccessToken: os.Getenv("KITE_ACCESS_TOKEN")}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// ParseHHMM parses a "15:30" style wall-clock time.
func ParseHHMM(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time '%s': want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}
