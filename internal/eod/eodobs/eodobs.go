package eodobs

import (
	"context"
	"time"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{summarizer: summarizer}
}

func (oes *observableEodSummarizer) SummarizeDay(t time.Time) (string, error) {
	date := t.Format("2006-01-02")
	return observe("eod.SummarizeDay", []any{"date", date}, func() (string, error) {
		return oes.summarizer.SummarizeDay(t)
	})
}

func (oes *observableEodSummarizer) SummarizeToday() (string, error) {
	return observe("eod.SummarizeToday", nil, oes.summarizer.SummarizeToday)
}

func observe(name string, fields []any, fn func() (string, error)) (string, error) {
	op := logger.StartOperation(context.Background(), name, fields...)

	csvPath, err := fn()
	if err != nil {
		op.EndWithError(err)
		return "", err
	}
	if csvPath == "" {
		logger.InfoSkip(op.GetContext(), 2, "No round trips to summarize", fields...)
	} else {
		logger.InfoSkip(op.GetContext(), 2, "EOD summary written", append(fields, "csv_path", csvPath)...)
	}
	op.End("csv_path", csvPath)
	return csvPath, nil
}
