package engine

import (
	"time"

	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

type pendingState int

const (
	pendingWaiting pendingState = iota
	pendingFilled
	pendingExpired
)

func (s pendingState) String() string {
	switch s {
	case pendingFilled:
		return "filled"
	case pendingExpired:
		return "expired"
	default:
		return "waiting"
	}
}

// fillTiming holds the two ages that drive the pending order: assumed
// filled at fillAfter, discarded past expireAfter.
type fillTiming struct {
	fillAfter   time.Duration
	expireAfter time.Duration
}

// advancePending moves the pending order forward at now. A SELL fill
// returns the completed round trip. At fill age an order whose side no
// longer matches the position is dropped instead of filled.
func (s *Session) advancePending(now time.Time, t fillTiming) (pendingState, *types.TradeRecord) {
	p := s.Pending
	if p == nil {
		return pendingWaiting, nil
	}
	age := now.Sub(p.PlacedAt)

	if age >= t.fillAfter {
		s.Pending = nil
		if !s.fillAllowed(p.Side) {
			// The position already reflects this side; nothing to fill.
			return pendingExpired, nil
		}
		if p.Side == types.SideBuy {
			s.applyBuyFill(p, now)
			return pendingFilled, nil
		}
		rec := s.applySellFill(p, now)
		return pendingFilled, &rec
	}

	if age > t.expireAfter {
		s.Pending = nil
		return pendingExpired, nil
	}
	return pendingWaiting, nil
}

func (s *Session) fillAllowed(side types.Side) bool {
	if side == types.SideBuy {
		return !s.Position.Open()
	}
	return s.Position.Open()
}

func (s *Session) applyBuyFill(p *PendingOrder, now time.Time) {
	s.Position = Position{Shares: p.Qty, BuyPrice: p.RefPrice, EntryTime: now}

	cost := decimal.NewFromFloat(p.RefPrice).Mul(decimal.NewFromInt(int64(p.Qty)))
	s.Cash = s.Cash.Sub(cost)
	if s.Cash.IsNegative() {
		s.Cash = decimal.Zero
	}
}

func (s *Session) applySellFill(p *PendingOrder, now time.Time) types.TradeRecord {
	qty := decimal.NewFromInt(int64(p.Qty))
	sell := decimal.NewFromFloat(p.RefPrice)
	buy := decimal.NewFromFloat(s.Position.BuyPrice)

	proceeds := sell.Mul(qty)
	s.Cash = s.Cash.Add(proceeds)

	rec := types.TradeRecord{
		Time:       now,
		Symbol:     s.Symbol,
		BuyPrice:   buy,
		SellPrice:  sell,
		Qty:        p.Qty,
		PnL:        proceeds.Sub(buy.Mul(qty)),
		PnLPct:     pctChange(s.Position.BuyPrice, p.RefPrice),
		Cash:       s.Cash,
		ExitReason: p.Reason,
	}
	s.Position = Position{}
	s.TradesClosed++
	return rec
}
