package eod

import (
	"time"

	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

// DayReader yields the round trips recorded for the IST day containing t.
type DayReader interface {
	ReadDay(t time.Time) ([]types.TradeRecord, error)
}

// aggRow accumulates the day's totals across all round trips.
type aggRow struct {
	Trades    int
	Qty       int
	BuyValue  decimal.Decimal
	SellValue decimal.Decimal
	PnL       decimal.Decimal
}

func (a *aggRow) add(rec types.TradeRecord) {
	q := decimal.NewFromInt(int64(rec.Qty))
	a.Trades++
	a.Qty += rec.Qty
	a.BuyValue = a.BuyValue.Add(rec.BuyPrice.Mul(q))
	a.SellValue = a.SellValue.Add(rec.SellPrice.Mul(q))
	a.PnL = a.PnL.Add(rec.PnL)
}

// pnlPct is realized PnL relative to capital deployed on entry.
func (a *aggRow) pnlPct() float64 {
	if a.BuyValue.IsZero() {
		return 0
	}
	return a.PnL.Div(a.BuyValue).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
