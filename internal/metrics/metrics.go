package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the trader's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Ticks          *prometheus.CounterVec
	Orders         *prometheus.CounterVec
	Trades         *prometheus.CounterVec
	ExitReasons    *prometheus.CounterVec
	Cash           prometheus.Gauge
	PositionShares prometheus.Gauge
	PendingOrders  prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trader_ticks_total", Help: "Engine ticks by result"},
			[]string{"result"},
		),
		Orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trader_orders_total", Help: "Order placements by side and result"},
			[]string{"side", "result"},
		),
		Trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trader_trades_total", Help: "Completed round trips by outcome"},
			[]string{"outcome"},
		),
		// stop_loss, profit_target, trailing_drawdown
		ExitReasons: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trader_exit_reasons_total", Help: "Exit orders by rule"},
			[]string{"reason"},
		),
		Cash: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "trader_cash_inr", Help: "Tracked cash balance in INR"},
		),
		PositionShares: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "trader_position_shares", Help: "Shares currently held"},
		),
		PendingOrders: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "trader_pending_orders", Help: "1 while an order awaits its fill"},
		),
	}
	reg.MustRegister(m.Ticks, m.Orders, m.Trades, m.ExitReasons, m.Cash, m.PositionShares, m.PendingOrders)
	return m
}

func (m *Metrics) Tick(result string) {
	if m == nil {
		return
	}
	m.Ticks.WithLabelValues(result).Inc()
}

func (m *Metrics) Order(side, result string) {
	if m == nil {
		return
	}
	m.Orders.WithLabelValues(side, result).Inc()
}

func (m *Metrics) Trade(outcome string) {
	if m == nil {
		return
	}
	m.Trades.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Exit(reason string) {
	if m == nil {
		return
	}
	m.ExitReasons.WithLabelValues(reason).Inc()
}

// State snapshots the session gauges.
func (m *Metrics) State(cash float64, shares int, pending bool) {
	if m == nil {
		return
	}
	m.Cash.Set(cash)
	m.PositionShares.Set(float64(shares))
	if pending {
		m.PendingOrders.Set(1)
	} else {
		m.PendingOrders.Set(0)
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
