package engine

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var ist = time.FixedZone("IST", 19800) // IST is UTC+5:30 (19800 seconds)

// toFloat coerces a quote field into a float. Strings may carry thousands
// separators.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// heldDays is the fractional number of days between entry and now.
func heldDays(entry, now time.Time) float64 {
	return now.Sub(entry).Hours() / 24
}

func pctChange(from, to float64) float64 {
	return (to - from) / from * 100
}
