package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

func TestStepEntersOnDip(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(199.4, 200)}, cash: 45000}
	e, _ := testEngine(brk, nil)
	ctx := context.Background()

	res, err := e.Step(ctx)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Action != types.ActionBuy || len(brk.placed) != 1 {
		t.Fatalf("expected one BUY, got %+v placed=%v", res, brk.placed)
	}
	req := brk.placed[0]
	if req.Side != types.SideBuy || req.Qty != Size(decimal.NewFromInt(45000), 199.4) || req.Tag != "ENTRY" {
		t.Fatalf("unexpected order %+v", req)
	}
	if e.sess.Pending == nil || e.sess.Pending.RefPrice != 199.4 {
		t.Fatalf("pending order not registered: %+v", e.sess.Pending)
	}

	// Pending blocks further orders on the next tick.
	res, err = e.Step(ctx)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Action != types.ActionHold || len(brk.placed) != 1 {
		t.Fatalf("no order may be placed while pending, got %+v", res)
	}
}

func TestStepFullRoundTrip(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(150, 151)}, cash: 45000}
	led := &memLedger{}
	e, clk := testEngine(brk, led)
	ctx := context.Background()

	if _, err := e.Step(ctx); err != nil {
		t.Fatalf("entry step: %v", err)
	}
	if brk.placed[0].Qty != 299 {
		t.Fatalf("qty = %d, want 299", brk.placed[0].Qty)
	}

	clk.advance(3 * time.Second)
	brk.quotes = []types.Quote{quote(156, 151)}
	res, err := e.Step(ctx)
	if err != nil {
		t.Fatalf("fill step: %v", err)
	}
	if e.sess.Position.Shares != 299 || e.sess.Position.BuyPrice != 150 {
		t.Fatalf("position after fill = %+v", e.sess.Position)
	}
	if res.Action != types.ActionSell || res.Reason != ReasonProfitTarget {
		t.Fatalf("expected profit_target exit, got %+v", res)
	}
	if brk.placed[1].Side != types.SideSell || brk.placed[1].Qty != 299 {
		t.Fatalf("unexpected exit order %+v", brk.placed[1])
	}

	clk.advance(3 * time.Second)
	res, err = e.Step(ctx)
	if err != nil {
		t.Fatalf("close step: %v", err)
	}
	if res.Closed == nil || len(led.records) != 1 {
		t.Fatalf("expected a closed trade in ledger, res=%+v ledger=%d", res, len(led.records))
	}
	rec := led.records[0]
	if rec.RunID != e.RunID() || rec.Symbol != "GOLDBEES" || rec.Outcome() != types.OutcomeSuccess {
		t.Fatalf("unexpected record %+v", rec)
	}
	if want := decimal.NewFromInt(299 * 6); !rec.PnL.Equal(want) {
		t.Fatalf("pnl = %s, want %s", rec.PnL, want)
	}
	wantCash := decimal.NewFromInt(45000 - 299*150 + 299*156)
	if !e.Cash().Equal(wantCash) {
		t.Fatalf("cash = %s, want %s", e.Cash(), wantCash)
	}
	if e.sess.Position.Open() {
		t.Fatal("position must be flat after the round trip")
	}
}

func TestStepExplicitPreviousCloseSkipsBars(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{{"last_price": 100.0, "previous_close": 100.0}}}
	e, _ := testEngine(brk, nil)
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if brk.barsCalls != 0 {
		t.Fatalf("bars fetched %d times, want 0", brk.barsCalls)
	}
}

func TestStepPreviousCloseFromBars(t *testing.T) {
	brk := &fakeBroker{
		quotes: []types.Quote{{"last_price": 99.0, "previous_close": "0"}},
		bars:   []types.Candle{{Close: 98}, {Close: 100}, {Close: 99}},
	}
	e, _ := testEngine(brk, nil)
	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if brk.barsCalls != 1 || res.PrevClose != 100 {
		t.Fatalf("prev close = %v after %d bar calls", res.PrevClose, brk.barsCalls)
	}
}

func TestStepSkipsWithoutPreviousClose(t *testing.T) {
	brk := &fakeBroker{
		quotes: []types.Quote{{"last_price": 99.0}},
		bars:   []types.Candle{{Close: 99}},
		cash:   10000,
	}
	e, _ := testEngine(brk, nil)
	res, err := e.Step(context.Background())
	if !errors.Is(err, ErrPreviousCloseUnavailable) || res != nil {
		t.Fatalf("expected ErrPreviousCloseUnavailable, got %v %v", res, err)
	}

	brk.barsErr = errors.New("503")
	if _, err := e.Step(context.Background()); !errors.Is(err, ErrPreviousCloseUnavailable) {
		t.Fatalf("expected ErrPreviousCloseUnavailable on bars error, got %v", err)
	}
	if len(brk.placed) != 0 {
		t.Fatal("skipped ticks must not trade")
	}
}

func TestStepInvalidQuote(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{{"last_price": 0.0}}}
	e, _ := testEngine(brk, nil)
	if _, err := e.Step(context.Background()); !errors.Is(err, ErrInvalidQuote) {
		t.Fatalf("expected ErrInvalidQuote, got %v", err)
	}
}

func TestStepQuoteRetries(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(100, 100)}, quoteErrs: 2}
	e, _ := testEngine(brk, nil)
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("third attempt should succeed: %v", err)
	}
	if brk.quoteCalls != 3 {
		t.Fatalf("quote calls = %d, want 3", brk.quoteCalls)
	}

	brk = &fakeBroker{quoteErrs: 3}
	e, _ = testEngine(brk, nil)
	if _, err := e.Step(context.Background()); !errors.Is(err, ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
}

func TestStepPlacementFailureLeavesState(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(199.4, 200)}, cash: 45000, placeErr: errors.New("rejected")}
	e, _ := testEngine(brk, nil)
	e.sess.Cash = decimal.NewFromInt(45000)

	res, err := e.Step(context.Background())
	if !errors.Is(err, ErrOrderPlacementFailed) {
		t.Fatalf("expected ErrOrderPlacementFailed, got %v", err)
	}
	if res == nil || e.sess.Pending != nil || e.sess.Position.Open() {
		t.Fatalf("state must be unchanged, pending=%+v pos=%+v", e.sess.Pending, e.sess.Position)
	}
	if !e.Cash().Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("cash changed to %s", e.Cash())
	}
}

func TestStepCashFetchFailureSuppressesEntry(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(199.4, 200)}, cashErr: errors.New("margins down")}
	e, _ := testEngine(brk, nil)
	e.sess.Cash = decimal.NewFromInt(45000)

	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(brk.placed) != 0 || res.Reason != "insufficient cash" {
		t.Fatalf("expected no order, got %+v", res)
	}
	if !e.Cash().Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("tracked cash must survive a failed refresh, got %s", e.Cash())
	}
}

func TestStepExpiresStalePending(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(100, 100)}}
	e, clk := testEngine(brk, nil)
	e.sess.Position = Position{Shares: 3, BuyPrice: 100, EntryTime: clk.now()}
	e.sess.Pending = &PendingOrder{Side: types.SideBuy, Qty: 3, RefPrice: 100, PlacedAt: clk.now()}

	clk.advance(3 * time.Minute)
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if e.sess.Pending != nil {
		t.Fatal("stale pending order must expire")
	}
	if e.sess.Position.Shares != 3 {
		t.Fatalf("expiry must not touch position: %+v", e.sess.Position)
	}
}

func TestBootstrapSeedsCashAndHolding(t *testing.T) {
	brk := &fakeBroker{
		cash:     2500.75,
		holdings: []types.Holding{{Symbol: "NIFTYBEES", Qty: 4, AveragePrice: 250}, {Symbol: "GOLDBEES", Qty: 12, AveragePrice: 61.2}},
	}
	e, _ := testEngine(brk, nil)
	if err := e.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !e.Cash().Equal(decimal.RequireFromString("2500.75")) {
		t.Fatalf("cash = %s", e.Cash())
	}
	if e.sess.Position.Shares != 12 || e.sess.Position.BuyPrice != 61.2 {
		t.Fatalf("position = %+v", e.sess.Position)
	}
}

func TestBootstrapCashFailureStartsAtZero(t *testing.T) {
	brk := &fakeBroker{cashErr: errors.New("down")}
	e, _ := testEngine(brk, nil)
	if err := e.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !e.Cash().IsZero() {
		t.Fatalf("cash = %s, want 0", e.Cash())
	}
}

func TestLedgerFailureIsNotFatal(t *testing.T) {
	brk := &fakeBroker{quotes: []types.Quote{quote(104, 104)}}
	led := &memLedger{err: errors.New("sheet quota")}
	e, clk := testEngine(brk, led)
	e.sess.Position = Position{Shares: 1, BuyPrice: 100, EntryTime: clk.now()}
	e.sess.Pending = &PendingOrder{Side: types.SideSell, Qty: 1, RefPrice: 104, PlacedAt: clk.now()}

	clk.advance(3 * time.Second)
	res, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("ledger errors must not fail the tick: %v", err)
	}
	if res.Closed == nil {
		t.Fatal("closed trade must still be reported")
	}
}
