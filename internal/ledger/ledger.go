package ledger

import (
	"context"
	"errors"

	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/logger"
	"goldbees-trader/internal/types"
)

// Fanout writes every record to all sinks. A failing sink does not stop
// the others; their errors are joined.
type Fanout struct {
	sinks []interfaces.TradeLedger
}

var _ interfaces.TradeLedger = (*Fanout)(nil)

func NewFanout(sinks ...interfaces.TradeLedger) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Record(ctx context.Context, rec types.TradeRecord) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Record(ctx, rec); err != nil {
			logger.Warn(ctx, "Trade ledger sink failed", "sink", sinkName(s), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type named interface{ Name() string }

func sinkName(s interfaces.TradeLedger) string {
	if n, ok := s.(named); ok {
		return n.Name()
	}
	return "unknown"
}
