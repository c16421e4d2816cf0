package main

import (
	"context"
	"fmt"

	"goldbees-trader/internal/broker/brokerobs"
	"goldbees-trader/internal/broker/zerodha"
	"goldbees-trader/internal/engine"
	"goldbees-trader/internal/engine/engineobs"
	"goldbees-trader/internal/eod"
	"goldbees-trader/internal/eod/eodobs"
	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/ledger"
	"goldbees-trader/internal/ledger/sheets"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/metrics"
	"goldbees-trader/internal/notify"
	"goldbees-trader/internal/store"
	"goldbees-trader/internal/tradelog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	logger.Info(ctx, "Config loaded", "mode", cfg.Mode, "run_mode", cfg.RunMode, "symbol", cfg.Symbol)
	return cfg, nil
}

// initializeBroker builds the Kite broker wrapped with observability.
// Missing credentials are fatal in both modes: market data needs them.
func initializeBroker(ctx context.Context, cfg *store.Config) (interfaces.Broker, error) {
	brk, err := zerodha.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("broker: %w", err)
	}
	if cfg.Mode == store.ModeDryRun {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	return brokerobs.Wrap(brk), nil
}

// initializeLedger returns the JSONL trade log and the fan-out over every
// configured sink. A Sheets failure degrades to the local log only.
func initializeLedger(ctx context.Context, cfg *store.Config) (*tradelog.Log, interfaces.TradeLedger) {
	tlog := tradelog.New(cfg.Ledger.Dir)
	if err := tlog.CompressOlder(cfg.Ledger.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old logs", "error", err)
	}

	sinks := []interfaces.TradeLedger{tlog}
	if cfg.Ledger.SpreadsheetID != "" && cfg.Ledger.ServiceAccountJSON != "" {
		sh, err := sheets.New(ctx, cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName, cfg.Ledger.ServiceAccountJSON)
		if err != nil {
			logger.Warn(ctx, "Google Sheets ledger disabled", "error", err)
		} else {
			sinks = append(sinks, sh)
		}
	}
	fan := ledger.NewFanout(sinks...)
	logger.Info(ctx, "Trade ledger ready", "dir", tlog.Dir(), "sinks", fan.Len())
	return tlog, fan
}

// initializeMetrics registers collectors and serves /metrics when an
// address is configured.
func initializeMetrics(ctx context.Context, cfg *store.Config) *metrics.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				logger.Warn(ctx, "Metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		logger.Info(ctx, "Serving metrics", "addr", cfg.MetricsAddr)
	}
	return m
}

func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	tg := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if !tg.Enabled() {
		logger.Warn(ctx, "Telegram not configured; notifications disabled")
	}
	return tg
}

// initializeEngine builds the trading engine wrapped with observability.
func initializeEngine(cfg *store.Config, brk interfaces.Broker, sink interfaces.TradeLedger, m *metrics.Metrics) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, brk, sink, m))
}

func initializeEOD(cfg *store.Config, tlog *tradelog.Log) interfaces.EodSummarizer {
	return eodobs.Wrap(eod.New(tlog, cfg.Ledger.Dir))
}
