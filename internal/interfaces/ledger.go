package interfaces

import (
	"context"

	"goldbees-trader/internal/types"
)

// TradeLedger persists completed round trips. The engine never reads
// records back.
type TradeLedger interface {
	Record(ctx context.Context, rec types.TradeRecord) error
}

type Notifier interface {
	Notify(ctx context.Context, cash float64, outcome types.Outcome) error
}
