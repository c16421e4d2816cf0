package brokerobs

import (
	"context"
	"time"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/trace"
	"goldbees-trader/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Quote")
	defer span.End()

	start := time.Now()
	q, err := ob.broker.Quote(ctx, symbol)
	if err != nil {
		logger.WarnSkip(ctx, 1, "Failed to fetch quote", "symbol", symbol, "error", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched", "symbol", symbol, "duration_ms", time.Since(start).Milliseconds())
	return q, nil
}

func (ob *observableBroker) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	op := logger.StartOperation(ctx, "broker.DailyBars",
		"symbol", symbol, "from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly))

	bars, err := ob.broker.DailyBars(op.GetContext(), symbol, from, to)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	op.End("count", len(bars))
	return bars, nil
}

// PlaceOrder places an order with observability
func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	op := logger.StartOperation(ctx, "broker.PlaceOrder",
		"symbol", req.Symbol, "side", string(req.Side), "qty", req.Qty, "tag", req.Tag)
	ctx = op.GetContext()

	resp, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		op.EndWithError(err)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order accepted by broker",
		"symbol", req.Symbol,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	op.End("order_id", resp.OrderID)
	return resp, nil
}

func (ob *observableBroker) AvailableCash(ctx context.Context) (float64, error) {
	op := logger.StartOperation(ctx, "broker.AvailableCash")

	cash, err := ob.broker.AvailableCash(op.GetContext())
	if err != nil {
		op.EndWithError(err)
		return 0, err
	}
	op.End("cash", cash)
	return cash, nil
}

func (ob *observableBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	op := logger.StartOperation(ctx, "broker.Holdings")

	hs, err := ob.broker.Holdings(op.GetContext())
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	op.End("count", len(hs))
	return hs, nil
}
