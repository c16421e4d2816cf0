package eod

import (
	"path/filepath"
	"time"
)

var ist = time.FixedZone("IST", 19800)

func (s *eodSummarizer) istNow() time.Time {
	return s.now().In(ist)
}

func (s *eodSummarizer) eodCSVPath(t time.Time) string {
	dateStr := t.In(ist).Format("2006-01-02")
	return filepath.Join(s.dir, "eod", dateStr+".csv")
}
