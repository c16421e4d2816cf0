package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"goldbees-trader/internal/types"
)

func TestLastPriceExtractorOrder(t *testing.T) {
	cases := []struct {
		name string
		q    types.Quote
		want float64
	}{
		{"primary", types.Quote{"last_price": 55.2, "ltp": 1.0}, 55.2},
		{"ltp synonym", types.Quote{"ltp": "1,234.50"}, 1234.5},
		{"null primary skipped", types.Quote{"last_price": nil, "last_trade_price": 10}, 10},
		{"zero primary skipped", types.Quote{"last_price": 0.0, "last_traded_price": json.Number("12.5")}, 12.5},
		{"ohlc last", types.Quote{"ohlc": map[string]any{"last": 9.0, "close": 8.0}}, 9},
		{"ohlc close", types.Quote{"ohlc": map[string]any{"close": 8.0}}, 8},
		{"offer price", types.Quote{"last_price": "n/a", "offer_price": 7.5}, 7.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LastPrice(tc.q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("LastPrice = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLastPriceInvalid(t *testing.T) {
	for _, q := range []types.Quote{
		{},
		{"last_price": nil},
		{"last_price": "abc"},
		{"last_price": -3.0},
	} {
		if _, err := LastPrice(q); !errors.Is(err, ErrInvalidQuote) {
			t.Fatalf("LastPrice(%v) err = %v, want ErrInvalidQuote", q, err)
		}
	}
}

func TestQuotePreviousCloseTreatsZeroAsAbsent(t *testing.T) {
	for _, q := range []types.Quote{
		{"previous_close": 0},
		{"previous_close": "0"},
		{"prev_close": nil},
		{"ohlc": map[string]any{"close": 0.0}},
	} {
		if pc, ok := QuotePreviousClose(q); ok {
			t.Fatalf("QuotePreviousClose(%v) = %v, want absent", q, pc)
		}
	}

	pc, ok := QuotePreviousClose(types.Quote{"previous_close": "0", "prev_close": "201.5"})
	if !ok || pc != 201.5 {
		t.Fatalf("expected fallthrough to prev_close, got %v %v", pc, ok)
	}
}

func TestBarsPreviousCloseUsesSecondToLast(t *testing.T) {
	bars := []types.Candle{{Close: 100}, {Close: 101}, {Close: 102}}
	pc, ok := BarsPreviousClose(bars)
	if !ok || pc != 101 {
		t.Fatalf("BarsPreviousClose = %v %v, want 101", pc, ok)
	}
	if _, ok := BarsPreviousClose(bars[:1]); ok {
		t.Fatal("single bar must not resolve")
	}
	if _, ok := BarsPreviousClose([]types.Candle{{Close: 0}, {Close: 5}}); ok {
		t.Fatal("zero close must not resolve")
	}
}
