package engine

import (
	"time"

	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

// Position is the single open holding. Shares == 0 means flat, in which
// case BuyPrice is 0 and EntryTime is zero.
type Position struct {
	Shares    int
	BuyPrice  float64
	EntryTime time.Time

	peakReturnPct float64
	peakSet       bool
}

func (p Position) Open() bool { return p.Shares > 0 }

// PeakReturnPct is the best return seen since entry; ok is false until the
// first observation.
func (p Position) PeakReturnPct() (pct float64, ok bool) {
	return p.peakReturnPct, p.peakSet
}

func (p *Position) observe(returnPct float64) {
	if !p.peakSet || returnPct > p.peakReturnPct {
		p.peakReturnPct = returnPct
		p.peakSet = true
	}
}

// PendingOrder is an order placed with the broker whose fill has not been
// assumed yet. RefPrice is the last price at placement and stands in for
// the fill price, which the broker does not confirm synchronously.
type PendingOrder struct {
	Side     types.Side
	Qty      int
	RefPrice float64
	PlacedAt time.Time
	OrderID  string
	Reason   string
}

// Session is everything the engine mutates across ticks. It is owned by
// one goroutine.
type Session struct {
	Symbol   string
	Cash     decimal.Decimal
	Position Position
	Pending  *PendingOrder

	TradesClosed int
}

func NewSession(symbol string) *Session {
	return &Session{Symbol: symbol, Cash: decimal.Zero}
}

// canPlace reports whether an order of side may be placed now.
func (s *Session) canPlace(side types.Side) bool {
	if s.Pending != nil {
		return false
	}
	switch side {
	case types.SideBuy:
		return !s.Position.Open()
	case types.SideSell:
		return s.Position.Open()
	}
	return false
}

// SeedPosition adopts an existing broker holding as the open position.
func (s *Session) SeedPosition(qty int, avgPrice float64, now time.Time) {
	if qty <= 0 || avgPrice <= 0 {
		return
	}
	s.Position = Position{Shares: qty, BuyPrice: avgPrice, EntryTime: now}
}
