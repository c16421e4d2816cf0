package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults, got error: %v", err)
	}
	if cfg.Symbol != "GOLDBEES" || cfg.Mode != ModeLive {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FillAfter() != 2*time.Second || cfg.ExpireAfter() != 2*time.Minute {
		t.Fatalf("unexpected fill timings: %v %v", cfg.FillAfter(), cfg.ExpireAfter())
	}
	if cfg.Orders.Product != "CNC" || cfg.Orders.OrderType != "MARKET" {
		t.Fatalf("unexpected order defaults: %+v", cfg.Orders)
	}
}

func TestLoadConfigYAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mode: dry_run
symbol: NIFTYBEES
loop_interval_seconds: 5
market:
  holidays: ["2025-10-21", "2025-10-22"]
ledger:
  dir: /tmp/trader
`)
	t.Setenv("TICKER", "GOLDBEES")
	t.Setenv("LOOP_FREQ_SECONDS", "0.1")
	t.Setenv("KITE_API_KEY", "key")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeDryRun {
		t.Errorf("mode = %s, want DRY_RUN", cfg.Mode)
	}
	if cfg.Symbol != "GOLDBEES" {
		t.Errorf("env TICKER should override yaml symbol, got %s", cfg.Symbol)
	}
	if len(cfg.Market.Holidays) != 2 {
		t.Errorf("holidays not decoded: %v", cfg.Market.Holidays)
	}
	if cfg.Market.Open != "09:15" {
		t.Errorf("defaults should survive partial yaml, got open=%s", cfg.Market.Open)
	}
	if cfg.Kite.APIKey != "key" || cfg.Telegram.ChatID != "42" {
		t.Errorf("secrets not read from env: %+v %+v", cfg.Kite, cfg.Telegram)
	}
	if got := cfg.LoopInterval(); got != MinLoopInterval {
		t.Errorf("loop interval should be clamped to %v, got %v", MinLoopInterval, got)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"mode":         func(c *Config) { c.Mode = "PAPER" },
		"symbol":       func(c *Config) { c.Symbol = " " },
		"end_time":     func(c *Config) { c.EndTime = "25:99" },
		"holiday":      func(c *Config) { c.Market.Holidays = []string{"21-Oct-25"} },
		"fill order":   func(c *Config) { c.Fill.FillAfterSeconds = 200 },
		"retries":      func(c *Config) { c.Quote.Retries = 0 },
		"loop cadence": func(c *Config) { c.LoopIntervalSeconds = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "mode: [unterminated")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestParseHHMM(t *testing.T) {
	h, m, err := ParseHHMM("09:15")
	if err != nil || h != 9 || m != 15 {
		t.Fatalf("ParseHHMM = %d %d %v", h, m, err)
	}
	if _, _, err := ParseHHMM("9.15"); err == nil || !strings.Contains(err.Error(), "HH:MM") {
		t.Fatalf("expected HH:MM error, got %v", err)
	}
}
