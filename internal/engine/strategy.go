package engine

import (
	"fmt"
	"math"
	"time"

	"goldbees-trader/internal/types"
)

// Thresholds in percent; holding periods in days.
const (
	BuyThreshold     = -0.29
	ProfitTarget     = 4.0
	StopLoss         = -1.0
	TrailingDrawdown = 0.30
	MinDays          = 0.0
	MaxDays          = 5.0
)

const (
	ReasonStopLoss         = "stop_loss"
	ReasonProfitTarget     = "profit_target"
	ReasonTrailingDrawdown = "trailing_drawdown"
	ReasonDipEntry         = "dip_entry"
)

// Decision is what the strategy wants done this tick.
type Decision struct {
	Action types.Action
	Reason string
}

type exitRule struct {
	reason string
	fires  func(ret, peak, held float64) bool
}

// exitRules are evaluated in order; the first that fires wins.
var exitRules = []exitRule{
	{ReasonStopLoss, func(ret, _, held float64) bool {
		return ret <= StopLoss && held >= MaxDays
	}},
	{ReasonProfitTarget, func(ret, _, held float64) bool {
		return ret >= ProfitTarget && held >= MinDays
	}},
	{ReasonTrailingDrawdown, func(ret, peak, held float64) bool {
		return math.Abs(peak-ret) >= TrailingDrawdown && held >= MaxDays
	}},
}

// Evaluate decides entry or exit for the position at the given prices. The
// position's peak return must already include the current tick.
func Evaluate(pos Position, last, prevClose float64, now time.Time) Decision {
	if !pos.Open() {
		change := pctChange(prevClose, last)
		if change <= BuyThreshold {
			return Decision{Action: types.ActionBuy, Reason: ReasonDipEntry}
		}
		return Decision{Action: types.ActionNone, Reason: fmt.Sprintf("change %.2f%% above %.2f%%", change, BuyThreshold)}
	}

	ret := pctChange(pos.BuyPrice, last)
	peak, ok := pos.PeakReturnPct()
	if !ok {
		peak = ret
	}
	held := heldDays(pos.EntryTime, now)

	for _, r := range exitRules {
		if r.fires(ret, peak, held) {
			return Decision{Action: types.ActionSell, Reason: r.reason}
		}
	}
	return Decision{Action: types.ActionHold, Reason: fmt.Sprintf("return %.2f%% held %.2fd", ret, held)}
}
