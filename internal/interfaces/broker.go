package interfaces

import (
	"context"
	"time"

	"goldbees-trader/internal/types"
)

type Broker interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
	AvailableCash(ctx context.Context) (float64, error)
	Holdings(ctx context.Context) ([]types.Holding, error)
}
