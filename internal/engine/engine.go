package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/metrics"
	"goldbees-trader/internal/store"
	"goldbees-trader/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuote             = errors.New("invalid quote: no usable last price")
	ErrPreviousCloseUnavailable = errors.New("previous close unavailable")
	ErrOrderPlacementFailed     = errors.New("order placement failed")
	ErrCashFetchFailed          = errors.New("cash fetch failed")
	ErrQuoteUnavailable         = errors.New("quote unavailable")
)

// lowCashWarning is the starting balance under which a warning is logged.
var lowCashWarning = decimal.NewFromInt(100)

// barsLookback is how far back the previous-close fallback asks for bars.
const barsLookback = 3 * 24 * time.Hour

type Engine struct {
	cfg     *store.Config
	brk     interfaces.Broker
	ledger  interfaces.TradeLedger
	metrics *metrics.Metrics
	orders  *orderExecutor
	sess    *Session
	timing  fillTiming
	runID   string

	now   func() time.Time
	sleep func(time.Duration)
}

func newEngine(cfg *store.Config, brk interfaces.Broker, ledger interfaces.TradeLedger, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		brk:     brk,
		ledger:  ledger,
		metrics: m,
		orders:  newOrderExecutor(brk, cfg.Symbol, m),
		sess:    NewSession(cfg.Symbol),
		timing:  fillTiming{fillAfter: cfg.FillAfter(), expireAfter: cfg.ExpireAfter()},
		runID:   uuid.NewString(),
		now:     func() time.Time { return time.Now().In(ist) },
		sleep:   time.Sleep,
	}
}

func (e *Engine) Cash() decimal.Decimal { return e.sess.Cash }

func (e *Engine) RunID() string { return e.runID }

// Bootstrap loads the starting cash balance and adopts an existing holding
// of the symbol. Broker failures here are logged, not returned.
func (e *Engine) Bootstrap(ctx context.Context) error {
	symbol := e.cfg.Symbol

	cash, err := e.brk.AvailableCash(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Initial cash fetch failed, starting from zero",
			fmt.Errorf("%w: %w", ErrCashFetchFailed, err), "symbol", symbol)
		cash = 0
	}
	e.sess.Cash = decimal.NewFromFloat(cash)
	if e.sess.Cash.LessThan(lowCashWarning) {
		logger.Warn(ctx, "Starting capital is very low", "cash", e.sess.Cash.StringFixed(2))
	}

	holdings, err := e.brk.Holdings(ctx)
	if err != nil {
		logger.Warn(ctx, "Holdings sync failed, assuming flat", "symbol", symbol, "error", err)
	} else {
		for _, h := range holdings {
			if h.Symbol == symbol && h.Qty > 0 {
				e.sess.SeedPosition(h.Qty, h.AveragePrice, e.now())
				logger.Info(ctx, "Adopted existing holding",
					"symbol", symbol, "qty", h.Qty, "avg_price", h.AveragePrice)
				break
			}
		}
	}

	logger.Info(ctx, "Engine ready",
		"symbol", symbol,
		"run_id", e.runID,
		"mode", e.cfg.Mode,
		"cash", e.sess.Cash.StringFixed(2),
		"shares", e.sess.Position.Shares,
	)
	e.publishState()
	return nil
}

// Step runs one tick. A non-nil result may accompany an
// ErrOrderPlacementFailed error; every other error means the tick was
// skipped with state unchanged.
func (e *Engine) Step(ctx context.Context) (*types.StepResult, error) {
	symbol := e.cfg.Symbol
	now := e.now()

	q, err := e.fetchQuote(ctx)
	if err != nil {
		e.metrics.Tick("quote_unavailable")
		return nil, err
	}

	last, err := LastPrice(q)
	if err != nil {
		e.metrics.Tick("invalid_quote")
		logger.Warn(ctx, "Skipping tick: invalid quote", "symbol", symbol)
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	prev, err := e.previousClose(ctx, q, now)
	if err != nil {
		e.metrics.Tick("no_previous_close")
		logger.Warn(ctx, "Skipping tick: previous close unavailable", "symbol", symbol, "error", err)
		return nil, err
	}

	res := &types.StepResult{
		Symbol:    symbol,
		Price:     last,
		PrevClose: prev,
		ChangePct: pctChange(prev, last),
		Action:    types.ActionNone,
		Time:      now.Unix(),
	}

	e.processPending(ctx, res, now)

	if e.sess.Position.Open() {
		e.sess.Position.observe(pctChange(e.sess.Position.BuyPrice, last))
	}

	if p := e.sess.Pending; p != nil {
		res.Action = types.ActionHold
		res.Reason = fmt.Sprintf("%s order pending", p.Side)
		e.metrics.Tick("pending")
		e.publishState()
		return res, nil
	}

	d := Evaluate(e.sess.Position, last, prev, now)
	res.Action, res.Reason = d.Action, d.Reason
	if d.Action == types.ActionBuy || d.Action == types.ActionSell {
		logger.Decision(ctx, symbol, string(d.Action), d.Reason,
			"price", last, "prev_close", prev, "change_pct", res.ChangePct)
	} else {
		logger.Debug(ctx, "No action", "symbol", symbol, "price", last, "reason", d.Reason)
	}

	switch d.Action {
	case types.ActionBuy:
		err = e.enter(ctx, res, last)
	case types.ActionSell:
		err = e.exit(ctx, res, last, d.Reason)
	}

	if err != nil {
		e.metrics.Tick("order_failed")
	} else {
		e.metrics.Tick("ok")
	}
	e.publishState()
	return res, err
}

func (e *Engine) fetchQuote(ctx context.Context) (types.Quote, error) {
	retries := e.cfg.Quote.Retries
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		q, err := e.brk.Quote(ctx, e.cfg.Symbol)
		if err == nil {
			return q, nil
		}
		lastErr = err
		logger.Warn(ctx, "Quote fetch failed",
			"symbol", e.cfg.Symbol, "attempt", attempt, "of", retries, "error", err)
		if attempt < retries {
			e.sleep(e.cfg.QuoteBackoff())
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrQuoteUnavailable, retries, lastErr)
}

// previousClose prefers the quote's own field and only then asks for
// daily bars.
func (e *Engine) previousClose(ctx context.Context, q types.Quote, now time.Time) (float64, error) {
	if pc, ok := QuotePreviousClose(q); ok {
		return pc, nil
	}

	bars, err := e.brk.DailyBars(ctx, e.cfg.Symbol, now.Add(-barsLookback), now)
	if err != nil {
		return 0, fmt.Errorf("%w: daily bars: %w", ErrPreviousCloseUnavailable, err)
	}
	pc, ok := BarsPreviousClose(bars)
	if !ok {
		return 0, fmt.Errorf("%w: %d bars without a usable close", ErrPreviousCloseUnavailable, len(bars))
	}
	logger.Debug(ctx, "Previous close from daily bars", "symbol", e.cfg.Symbol, "prev_close", pc, "bars", len(bars))
	return pc, nil
}

func (e *Engine) processPending(ctx context.Context, res *types.StepResult, now time.Time) {
	p := e.sess.Pending
	state, rec := e.sess.advancePending(now, e.timing)

	switch state {
	case pendingFilled:
		logger.Info(ctx, "Order assumed filled",
			"symbol", e.cfg.Symbol,
			"side", p.Side,
			"qty", p.Qty,
			"ref_price", p.RefPrice,
			"order_id", p.OrderID,
			"cash", e.sess.Cash.StringFixed(2),
		)
		if rec != nil {
			e.closeTrade(ctx, rec)
			res.Closed = rec
		}
	case pendingExpired:
		age := now.Sub(p.PlacedAt)
		logger.Warn(ctx, "Pending order expired without fill",
			"symbol", e.cfg.Symbol, "side", p.Side, "order_id", p.OrderID, "age_s", age.Seconds())
		logger.Risk(ctx, e.cfg.Symbol, "PENDING_ORDER_EXPIRED",
			"side", p.Side, "qty", p.Qty, "order_id", p.OrderID)
		e.metrics.Order(string(p.Side), "expired")
	}
}

func (e *Engine) closeTrade(ctx context.Context, rec *types.TradeRecord) {
	rec.RunID = e.runID
	rec.RunMode = e.cfg.RunMode

	outcome := rec.Outcome()
	e.metrics.Trade(string(outcome))
	logger.Info(ctx, "Round trip closed",
		"symbol", rec.Symbol,
		"qty", rec.Qty,
		"buy_price", rec.BuyPrice.String(),
		"sell_price", rec.SellPrice.String(),
		"pnl", rec.PnL.StringFixed(2),
		"pnl_pct", rec.PnLPct,
		"exit_reason", rec.ExitReason,
		"outcome", outcome,
	)

	if e.ledger == nil {
		return
	}
	if err := e.ledger.Record(ctx, *rec); err != nil {
		logger.ErrorWithErr(ctx, "Failed to record trade", err, "symbol", rec.Symbol)
	}
}

func (e *Engine) enter(ctx context.Context, res *types.StepResult, price float64) error {
	if !e.sess.canPlace(types.SideBuy) {
		return nil
	}

	cash := e.refreshCash(ctx)
	qty := Size(cash, price)
	if qty == 0 {
		res.Reason = "insufficient cash"
		logger.Info(ctx, "Entry signal but cash buys nothing",
			"symbol", e.cfg.Symbol, "cash", cash.StringFixed(2), "price", price)
		return nil
	}
	return e.submit(ctx, res, types.SideBuy, qty, price, ReasonDipEntry)
}

func (e *Engine) exit(ctx context.Context, res *types.StepResult, price float64, reason string) error {
	if !e.sess.canPlace(types.SideSell) {
		return nil
	}
	if err := e.submit(ctx, res, types.SideSell, e.sess.Position.Shares, price, reason); err != nil {
		return err
	}
	e.metrics.Exit(reason)
	return nil
}

func (e *Engine) submit(ctx context.Context, res *types.StepResult, side types.Side, qty int, price float64, reason string) error {
	resp, err := e.orders.place(ctx, side, qty, price, reason)
	if err != nil {
		return err
	}
	e.sess.Pending = &PendingOrder{
		Side:     side,
		Qty:      qty,
		RefPrice: price,
		PlacedAt: e.now(),
		OrderID:  resp.OrderID,
		Reason:   reason,
	}
	res.Orders = append(res.Orders, resp)
	return nil
}

// refreshCash replaces the tracked balance with the broker's. On failure
// sizing sees zero and the tracked balance is kept.
func (e *Engine) refreshCash(ctx context.Context) decimal.Decimal {
	cash, err := e.brk.AvailableCash(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Cash refresh failed, entry suppressed",
			fmt.Errorf("%w: %w", ErrCashFetchFailed, err), "symbol", e.cfg.Symbol)
		return decimal.Zero
	}
	e.sess.Cash = decimal.NewFromFloat(cash)
	return e.sess.Cash
}

func (e *Engine) publishState() {
	cash, _ := e.sess.Cash.Float64()
	e.metrics.State(cash, e.sess.Position.Shares, e.sess.Pending != nil)
}
