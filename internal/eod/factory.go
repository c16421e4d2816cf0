package eod

import (
	"time"

	"goldbees-trader/internal/interfaces"
)

// New builds a summarizer that reads round trips from source and writes
// CSVs under dir.
func New(source DayReader, dir string) interfaces.EodSummarizer {
	return newSummarizer(source, dir, time.Now)
}

func newSummarizer(source DayReader, dir string, now func() time.Time) *eodSummarizer {
	if dir == "" {
		dir = "logs"
	}
	return &eodSummarizer{source: source, dir: dir, now: now}
}
