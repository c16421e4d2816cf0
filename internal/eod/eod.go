package eod

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"goldbees-trader/internal/interfaces"
)

var header = []string{
	"time", "run_id", "symbol", "qty", "buy_price", "sell_price",
	"gross_buy_value", "gross_sell_value", "realized_pnl", "pnl_pct", "exit_reason", "cash",
}

type eodSummarizer struct {
	source DayReader
	dir    string
	now    func() time.Time
}

var _ interfaces.EodSummarizer = (*eodSummarizer)(nil)

// SummarizeDay writes <dir>/eod/YYYY-MM-DD.csv with one row per round trip
// and a TOTAL row. A day without trades writes nothing and returns "".
func (s *eodSummarizer) SummarizeDay(t time.Time) (string, error) {
	recs, err := s.source.ReadDay(t)
	if err != nil {
		return "", fmt.Errorf("read trades: %w", err)
	}
	if len(recs) == 0 {
		return "", nil
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })

	outPath := s.eodCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return "", err
	}

	var total aggRow
	for _, r := range recs {
		var day aggRow
		day.add(r)
		total.add(r)
		row := []string{
			r.Time.In(ist).Format("15:04:05"),
			r.RunID,
			r.Symbol,
			strconv.Itoa(r.Qty),
			r.BuyPrice.StringFixed(2),
			r.SellPrice.StringFixed(2),
			day.BuyValue.StringFixed(2),
			day.SellValue.StringFixed(2),
			r.PnL.StringFixed(2),
			strconv.FormatFloat(r.PnLPct, 'f', 4, 64),
			r.ExitReason,
			r.Cash.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	totalRow := []string{
		"TOTAL", "", strconv.Itoa(total.Trades) + " trades", strconv.Itoa(total.Qty), "", "",
		total.BuyValue.StringFixed(2),
		total.SellValue.StringFixed(2),
		total.PnL.StringFixed(2),
		strconv.FormatFloat(total.pnlPct(), 'f', 4, 64),
		"", recs[len(recs)-1].Cash.StringFixed(2),
	}
	if err := w.Write(totalRow); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

func (s *eodSummarizer) SummarizeToday() (string, error) { return s.SummarizeDay(s.istNow()) }
