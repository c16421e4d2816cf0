package engine

import (
	"github.com/shopspring/decimal"
)

type cashDeltaBand struct {
	low, high float64
	delta     float64
}

// cashDeltaBands is the execution buffer applied when sizing, indexed by
// cash. Bounds are inclusive on both ends.
var cashDeltaBands = []cashDeltaBand{
	{0, 1000, 0.0078},
	{1001, 3000, 0.0053},
	{3001, 5000, 0.0044},
	{5001, 10000, 0.0040},
	{10001, 50000, 0.0033},
	{50001, 100000, 0.0028},
	{100001, 500000, 0.0023},
	{500001, 1000000, 0.0024},
	{1000001, 10000000, 0.0025},
}

// fallbackDelta applies to cash outside every band, including the gaps
// between integer bounds.
const fallbackDelta = 0.0030

func deltaFor(cash float64) float64 {
	for _, b := range cashDeltaBands {
		if cash >= b.low && cash <= b.high {
			return b.delta
		}
	}
	return fallbackDelta
}

// Size converts cash into a share count at price, keeping
// qty*price*(1+delta) within cash.
func Size(cash decimal.Decimal, price float64) int {
	if price <= 0 || cash.Sign() <= 0 {
		return 0
	}
	cf, _ := cash.Float64()
	delta := decimal.NewFromFloat(deltaFor(cf))
	denom := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(1).Add(delta))

	q := cash.Div(denom).Floor()
	// Div rounds at DivisionPrecision; step back if that rounded up.
	for q.Sign() > 0 && q.Mul(denom).GreaterThan(cash) {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return int(q.IntPart())
}
