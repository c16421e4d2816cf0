package engine

import (
	"context"
	"fmt"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/metrics"
	"goldbees-trader/internal/types"
)

// orderTags maps a decision reason to the broker order tag.
var orderTags = map[string]string{
	ReasonDipEntry:         "ENTRY",
	ReasonStopLoss:         "SL",
	ReasonProfitTarget:     "PT",
	ReasonTrailingDrawdown: "TD",
}

// orderExecutor places market orders for one symbol.
type orderExecutor struct {
	broker  interfaces.Broker
	symbol  string
	metrics *metrics.Metrics
}

func newOrderExecutor(broker interfaces.Broker, symbol string, m *metrics.Metrics) *orderExecutor {
	return &orderExecutor{broker: broker, symbol: symbol, metrics: m}
}

// place sends the order and returns the pending order to track. Failures
// wrap ErrOrderPlacementFailed.
func (oe *orderExecutor) place(ctx context.Context, side types.Side, qty int, price float64, reason string) (types.OrderResp, error) {
	req := types.OrderReq{
		Symbol: oe.symbol,
		Side:   side,
		Qty:    qty,
		Tag:    orderTags[reason],
	}

	resp, err := oe.broker.PlaceOrder(ctx, req)
	if err != nil {
		oe.metrics.Order(string(side), "failed")
		err = fmt.Errorf("%w: %s %d %s: %w", ErrOrderPlacementFailed, side, qty, oe.symbol, err)
		logger.ErrorWithErr(ctx, "Failed to place order", err,
			"symbol", oe.symbol,
			"side", side,
			"qty", qty,
			"price", price,
			"reason", reason,
		)
		return types.OrderResp{}, err
	}

	oe.metrics.Order(string(side), "placed")
	logger.Trade(ctx, oe.symbol, string(side), qty, price, resp.OrderID, "reason", reason, "tag", req.Tag)
	return resp, nil
}
