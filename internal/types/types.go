package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Quote is the raw quote payload as returned by the broker. Field names
// follow the broker's JSON shape; the engine only derives last price and
// previous close from it.
type Quote map[string]any

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

type Holding struct {
	Symbol       string  `json:"symbol"`
	Qty          int     `json:"qty"`
	AveragePrice float64 `json:"average_price"`
}

type OrderReq struct {
	Symbol string
	Side   Side
	Qty    int
	Tag    string
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Outcome is the coarse result tag sent to the operator.
type Outcome string

const (
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeBreakeven Outcome = "BREAKEVEN"
	OutcomeDone      Outcome = "DONE"
	OutcomeError     Outcome = "ERROR"
)

// TradeRecord describes one completed round trip (BUY fill through SELL fill).
type TradeRecord struct {
	Time       time.Time       `json:"time"`
	RunID      string          `json:"run_id"`
	RunMode    string          `json:"run_mode"`
	Symbol     string          `json:"symbol"`
	BuyPrice   decimal.Decimal `json:"buy_price"`
	SellPrice  decimal.Decimal `json:"sell_price"`
	Qty        int             `json:"qty"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPct     float64         `json:"pnl_pct"`
	Cash       decimal.Decimal `json:"cash"`
	ExitReason string          `json:"exit_reason"`
}

// Outcome classifies the record by the sign of its PnL.
func (r TradeRecord) Outcome() Outcome {
	switch r.PnL.Sign() {
	case 1:
		return OutcomeSuccess
	case -1:
		return OutcomeLoss
	default:
		return OutcomeBreakeven
	}
}

type Action string

const (
	ActionNone Action = "NONE"
	ActionHold Action = "HOLD"
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

type StepResult struct {
	Symbol    string       `json:"symbol"`
	Price     float64      `json:"price"`
	PrevClose float64      `json:"prev_close"`
	ChangePct float64      `json:"change_pct"`
	Action    Action       `json:"action"`
	Reason    string       `json:"reason"`
	Time      int64        `json:"time"`
	Orders    []OrderResp  `json:"orders"`
	Closed    *TradeRecord `json:"closed,omitempty"`
}
