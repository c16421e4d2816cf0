package runner

import (
	"context"
	"errors"
	"time"

	"goldbees-trader/internal/calendar"
	"goldbees-trader/internal/engine"
	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/store"
	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

const gateLogEvery = 5 * time.Minute

// Stop reasons reported in Summary.
const (
	StopShutdown      = "shutdown"
	StopEndTime       = "end_time"
	StopNonTradingDay = "non_trading_day"
)

type Summary struct {
	Reason       string
	Ticks        int
	TradesClosed int
	FinalCash    decimal.Decimal
}

// Runner drives the engine one tick at a time until shutdown or end time.
type Runner struct {
	eng      interfaces.Engine
	notifier interfaces.Notifier
	eod      interfaces.EodSummarizer
	cal      *calendar.Calendar
	symbol   string
	interval time.Duration
	endHour  int
	endMin   int

	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration)
	lastGateLog time.Time
}

// New builds a runner; notifier and summarizer may be nil.
func New(cfg *store.Config, eng interfaces.Engine, cal *calendar.Calendar, n interfaces.Notifier, s interfaces.EodSummarizer) (*Runner, error) {
	h, m, err := store.ParseHHMM(cfg.EndTime)
	if err != nil {
		return nil, err
	}
	return &Runner{
		eng:      eng,
		notifier: n,
		eod:      s,
		cal:      cal,
		symbol:   cfg.Symbol,
		interval: cfg.LoopInterval(),
		endHour:  h,
		endMin:   m,
		now:      time.Now,
		sleep:    sleepCtx,
	}, nil
}

func (r *Runner) Run(ctx context.Context) Summary {
	var sum Summary
	if now := r.now(); !r.cal.IsTradingDay(now) {
		logger.Info(ctx, "Market closed today (weekend/holiday); not trading",
			"date", now.In(calendar.IST).Format("2006-01-02"))
		sum.Reason = StopNonTradingDay
		sum.FinalCash = r.eng.Cash()
		return sum
	}

	logger.Info(ctx, "Trading loop started", "symbol", r.symbol, "interval", r.interval,
		"end_time", calendar.At(r.now(), r.endHour, r.endMin).Format("15:04"))

	for {
		if ctx.Err() != nil {
			sum.Reason = StopShutdown
			break
		}
		now := r.now()
		if !now.Before(calendar.At(now, r.endHour, r.endMin)) {
			sum.Reason = StopEndTime
			break
		}
		if openAt := r.cal.OpenAt(now); now.Before(openAt) {
			if r.lastGateLog.IsZero() || now.Sub(r.lastGateLog) >= gateLogEvery {
				logger.Info(ctx, "Waiting for market open", "open_at", openAt.Format("15:04"),
					"in", openAt.Sub(now).Round(time.Second).String())
				r.lastGateLog = now
			}
			r.sleep(ctx, r.interval)
			continue
		}

		sum.Ticks++
		r.tick(ctx, &sum)
		r.sleep(ctx, r.interval)
	}

	r.finish(ctx, &sum)
	return sum
}

func (r *Runner) tick(ctx context.Context, sum *Summary) {
	// In-flight broker calls finish even when shutdown arrives mid-tick.
	res, err := r.eng.Step(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn(ctx, "Tick failed", "symbol", r.symbol, "kind", errorKind(err), "error", err)
	}
	if res == nil || res.Closed == nil {
		return
	}
	sum.TradesClosed++
	r.notify(ctx, res.Closed.Cash.InexactFloat64(), res.Closed.Outcome())
}

func (r *Runner) finish(ctx context.Context, sum *Summary) {
	ctx = context.WithoutCancel(ctx)
	sum.FinalCash = r.eng.Cash()
	logger.Info(ctx, "Trading loop stopped",
		"reason", sum.Reason,
		"ticks", sum.Ticks,
		"trades_closed", sum.TradesClosed,
		"final_cash", sum.FinalCash.StringFixed(2),
	)
	if sum.TradesClosed > 0 {
		r.notify(ctx, sum.FinalCash.InexactFloat64(), types.OutcomeDone)
	}
	if r.eod != nil {
		if p, err := r.eod.SummarizeToday(); err == nil && p != "" {
			logger.Info(ctx, "EOD CSV written", "path", p)
		}
	}
}

func (r *Runner) notify(ctx context.Context, cash float64, outcome types.Outcome) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, cash, outcome); err != nil {
		logger.Warn(ctx, "Notification failed", "outcome", outcome, "error", err)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrQuoteUnavailable):
		return "quote_unavailable"
	case errors.Is(err, engine.ErrInvalidQuote):
		return "invalid_quote"
	case errors.Is(err, engine.ErrPreviousCloseUnavailable):
		return "previous_close_unavailable"
	case errors.Is(err, engine.ErrOrderPlacementFailed):
		return "order_placement_failed"
	case errors.Is(err, engine.ErrCashFetchFailed):
		return "cash_fetch_failed"
	default:
		return "unknown"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
