package engine

import (
	"context"
	"errors"
	"time"

	"goldbees-trader/internal/store"
	"goldbees-trader/internal/types"
)

type fakeBroker struct {
	quotes    []types.Quote
	quoteErrs int
	bars      []types.Candle
	barsErr   error
	cash      float64
	cashErr   error
	holdings  []types.Holding
	placeErr  error

	quoteCalls int
	barsCalls  int
	placed     []types.OrderReq
}

func (f *fakeBroker) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	f.quoteCalls++
	if f.quoteErrs > 0 {
		f.quoteErrs--
		return nil, errors.New("timeout")
	}
	if len(f.quotes) == 0 {
		return types.Quote{}, nil
	}
	q := f.quotes[0]
	if len(f.quotes) > 1 {
		f.quotes = f.quotes[1:]
	}
	return q, nil
}

func (f *fakeBroker) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	f.barsCalls++
	return f.bars, f.barsErr
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if f.placeErr != nil {
		return types.OrderResp{}, f.placeErr
	}
	f.placed = append(f.placed, req)
	return types.OrderResp{OrderID: "SIM-1", Status: "SIMULATED"}, nil
}

func (f *fakeBroker) AvailableCash(ctx context.Context) (float64, error) {
	return f.cash, f.cashErr
}

func (f *fakeBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	return f.holdings, nil
}

type memLedger struct {
	records []types.TradeRecord
	err     error
}

func (m *memLedger) Record(ctx context.Context, rec types.TradeRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func quote(last, prev float64) types.Quote {
	return types.Quote{"last_price": last, "ohlc": map[string]any{"close": prev}}
}

func testEngine(brk *fakeBroker, led *memLedger) (*Engine, *clock) {
	cfg := store.Defaults()
	c := &clock{t: time.Date(2025, 10, 20, 10, 0, 0, 0, ist)}
	var e *Engine
	if led != nil {
		e = newEngine(&cfg, brk, led, nil)
	} else {
		e = newEngine(&cfg, brk, nil, nil)
	}
	e.now = c.now
	e.sleep = func(time.Duration) {}
	return e, c
}
