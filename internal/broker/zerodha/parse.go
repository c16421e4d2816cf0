package zerodha

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// toMap re-encodes a typed SDK value into a generic JSON object.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseAmount accepts numbers and strings such as "1,23,456.50".
func parseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		s = strings.TrimPrefix(s, "₹")
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount %T", v)
	}
}

// dig walks nested objects by key.
func dig(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, k := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// cashPaths are tried in order against the margins payload.
var cashPaths = [][]string{
	{"equity", "available", "live_balance"},
	{"equity", "available", "cash"},
	{"equity", "net"},
}

func cashFromMargins(m map[string]any) (decimal.Decimal, error) {
	for _, p := range cashPaths {
		raw, ok := dig(m, p...)
		if !ok || raw == nil {
			continue
		}
		d, err := parseAmount(raw)
		if err != nil {
			continue
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("no cash balance in margins response")
}
