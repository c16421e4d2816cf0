package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goldbees-trader/internal/calendar"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/runner"
	"goldbees-trader/internal/trace"
	"goldbees-trader/internal/types"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", envOr("TRADER_CONFIG", "config.yaml"), "path to config.yaml")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, *configPath, run)
	stop()
	os.Exit(code)
}

// execute runs fn and flushes tracing before reporting the exit code, so
// spans from a failed run are not lost.
func execute(ctx context.Context, configPath string, fn func(context.Context, string) error) int {
	defer flushTracing()

	if err := fn(ctx, configPath); err != nil {
		logger.ErrorWithErr(ctx, "Trader exited with error", err)
		return 1
	}
	return 0
}

func flushTracing() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush traces: %v\n", err)
	}
}

func run(ctx context.Context, configPath string) (err error) {
	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	// Fatal errors and panics reach the operator as an ERROR notification.
	notifier := initializeNotifier(ctx, cfg)
	var cashFn func() float64
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			cash := 0.0
			if cashFn != nil {
				cash = cashFn()
			}
			if nerr := notifier.Notify(context.WithoutCancel(ctx), cash, types.OutcomeError); nerr != nil {
				logger.Warn(ctx, "Failed to send ERROR notification", "error", nerr)
			}
		}
	}()

	cal, err := calendar.New(cfg.Market)
	if err != nil {
		return err
	}
	if !cal.IsTradingDay(time.Now()) {
		logger.Info(ctx, "Market closed today (weekend/holiday); exiting",
			"date", time.Now().In(calendar.IST).Format("2006-01-02"))
		return nil
	}

	brk, err := initializeBroker(ctx, cfg)
	if err != nil {
		return err
	}

	tlog, sink := initializeLedger(ctx, cfg)
	m := initializeMetrics(ctx, cfg)

	eng := initializeEngine(cfg, brk, sink, m)
	cashFn = func() float64 { return eng.Cash().InexactFloat64() }
	if err := eng.Bootstrap(ctx); err != nil {
		return err
	}

	summarizer := initializeEOD(cfg, tlog)

	r, err := runner.New(cfg, eng, cal, notifier, summarizer)
	if err != nil {
		return err
	}
	r.Run(ctx)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// initializeSystem loads .env and starts logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}
