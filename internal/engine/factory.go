package engine

import (
	"goldbees-trader/internal/interfaces"
	"goldbees-trader/internal/metrics"
	"goldbees-trader/internal/store"
)

// New builds the engine for cfg.Symbol. ledger and m may be nil.
func New(cfg *store.Config, brk interfaces.Broker, ledger interfaces.TradeLedger, m *metrics.Metrics) interfaces.Engine {
	return newEngine(cfg, brk, ledger, m)
}
