package eod

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"goldbees-trader/internal/types"

	"github.com/shopspring/decimal"
)

type staticReader struct {
	recs []types.TradeRecord
	err  error
}

func (r staticReader) ReadDay(time.Time) ([]types.TradeRecord, error) { return r.recs, r.err }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(h, m int) time.Time { return time.Date(2025, 10, 20, h, m, 0, 0, ist) }

func TestSummarizeDayWritesRowsAndTotal(t *testing.T) {
	dir := t.TempDir()
	recs := []types.TradeRecord{
		{Time: day(11, 0), Symbol: "GOLDBEES", Qty: 10, BuyPrice: d("100"), SellPrice: d("104"), PnL: d("40"), PnLPct: 4, Cash: d("1040"), ExitReason: "profit_target"},
		{Time: day(10, 0), Symbol: "GOLDBEES", Qty: 10, BuyPrice: d("100"), SellPrice: d("99"), PnL: d("-10"), PnLPct: -1, Cash: d("990"), ExitReason: "stop_loss"},
	}
	s := newSummarizer(staticReader{recs: recs}, dir, func() time.Time { return day(16, 0) })

	path, err := s.SummarizeDay(day(12, 0))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if path != filepath.Join(dir, "eod", "2025-10-20.csv") {
		t.Fatalf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("want header, 2 trades and TOTAL, got %d rows", len(rows))
	}
	if rows[1][0] != "10:00:00" || rows[1][10] != "stop_loss" {
		t.Fatalf("rows not ordered by time: %v", rows[1])
	}
	total := rows[3]
	if total[0] != "TOTAL" || total[6] != "2000.00" || total[7] != "2030.00" || total[8] != "30.00" {
		t.Fatalf("unexpected total row: %v", total)
	}
	if total[9] != "1.5000" || total[11] != "1040.00" {
		t.Fatalf("unexpected total pct/cash: %v", total)
	}
}

func TestSummarizeDayNoTrades(t *testing.T) {
	dir := t.TempDir()
	s := newSummarizer(staticReader{}, dir, time.Now)
	path, err := s.SummarizeDay(day(12, 0))
	if err != nil || path != "" {
		t.Fatalf("want empty result, got %q %v", path, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "eod")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("no file should be written for an empty day")
	}
}

func TestSummarizeDayReadError(t *testing.T) {
	boom := errors.New("corrupt")
	s := newSummarizer(staticReader{err: boom}, t.TempDir(), time.Now)
	if _, err := s.SummarizeDay(day(12, 0)); !errors.Is(err, boom) {
		t.Fatalf("want wrapped read error, got %v", err)
	}
}

func TestSummarizeTodayUsesISTDate(t *testing.T) {
	dir := t.TempDir()
	recs := []types.TradeRecord{{Time: day(10, 0), Symbol: "GOLDBEES", Qty: 1, BuyPrice: d("1"), SellPrice: d("1"), PnL: d("0"), Cash: d("1")}}
	// 20:00 UTC on the 19th is already the 20th in IST.
	s := newSummarizer(staticReader{recs: recs}, dir, func() time.Time {
		return time.Date(2025, 10, 19, 20, 0, 0, 0, time.UTC)
	})
	path, err := s.SummarizeToday()
	if err != nil || path != filepath.Join(dir, "eod", "2025-10-20.csv") {
		t.Fatalf("SummarizeToday = %q, %v", path, err)
	}
}
