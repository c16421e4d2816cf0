package engine

import (
	"goldbees-trader/internal/types"
)

// extractor pulls one candidate number out of a quote payload.
type extractor func(q types.Quote) (any, bool)

func field(name string) extractor {
	return func(q types.Quote) (any, bool) {
		v, ok := q[name]
		return v, ok
	}
}

func nested(block, name string) extractor {
	return func(q types.Quote) (any, bool) {
		inner, ok := q[block].(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := inner[name]
		return v, ok
	}
}

// Tried in order; the first usable value wins.
var lastPriceExtractors = []extractor{
	field("last_price"),
	field("last_trade_price"),
	field("last_traded_price"),
	field("ltp"),
	nested("ohlc", "last"),
	nested("ohlc", "close"),
	field("offer_price"),
}

var previousCloseExtractors = []extractor{
	field("previous_close"),
	field("prev_close"),
	nested("ohlc", "previous_close"),
	nested("ohlc", "prev_close"),
	nested("ohlc", "close"),
}

// firstNonZero returns the first candidate that is present, numeric and
// non-zero.
func firstNonZero(q types.Quote, chain []extractor) (float64, bool) {
	for _, ex := range chain {
		raw, ok := ex(q)
		if !ok {
			continue
		}
		f, ok := toFloat(raw)
		if !ok || f == 0 {
			continue
		}
		return f, true
	}
	return 0, false
}

// LastPrice returns the last traded price of the quote, or ErrInvalidQuote
// when no candidate resolves to a positive number.
func LastPrice(q types.Quote) (float64, error) {
	f, ok := firstNonZero(q, lastPriceExtractors)
	if !ok || f <= 0 {
		return 0, ErrInvalidQuote
	}
	return f, nil
}

// QuotePreviousClose reads an explicit previous close from the quote. Zero
// is treated as absent.
func QuotePreviousClose(q types.Quote) (float64, bool) {
	f, ok := firstNonZero(q, previousCloseExtractors)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}

// BarsPreviousClose takes the close of the second-to-last bar, the last
// complete session when the newest bar is still forming.
func BarsPreviousClose(bars []types.Candle) (float64, bool) {
	if len(bars) < 2 {
		return 0, false
	}
	c := bars[len(bars)-2].Close
	if c <= 0 {
		return 0, false
	}
	return c, true
}
