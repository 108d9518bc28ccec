// Package metrics exposes the bot's Prometheus metrics:
//   - bot_cycles_total                      – analysis cycles completed
//   - bot_signals_total{symbol,signal}      – signals produced (BUY|SELL|NONE)
//   - bot_orders_total{symbol,direction}    – orders successfully executed
//   - bot_skips_total{reason}               – per-symbol skips by gate reason
//   - bot_account_balance                   – last observed account balance
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	cycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Analysis cycles completed",
		},
	)

	signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_signals_total",
			Help: "Signals produced",
		},
		[]string{"symbol", "signal"},
	)

	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders successfully executed",
		},
		[]string{"symbol", "direction"},
	)

	skips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_skips_total",
			Help: "Per-symbol skips by eligibility gate reason",
		},
		[]string{"reason"},
	)

	balance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_account_balance",
			Help: "Last observed account balance",
		},
	)
)

func init() {
	prometheus.MustRegister(cycles, signals, orders, skips, balance)
}

// IncCycles records a completed analysis cycle.
func IncCycles() { cycles.Inc() }

// IncSignal records a produced signal.
func IncSignal(symbol, signal string) { signals.WithLabelValues(symbol, signal).Inc() }

// IncOrder records a successfully executed order.
func IncOrder(symbol, direction string) { orders.WithLabelValues(symbol, direction).Inc() }

// IncSkip records an eligibility gate rejection.
func IncSkip(reason string) { skips.WithLabelValues(reason).Inc() }

// SetBalance updates the account balance gauge.
func SetBalance(v float64) { balance.Set(v) }

// Serve starts the Prometheus endpoint on the given port in a new goroutine.
// A port of zero disables the endpoint.
func Serve(port int, logger *zap.Logger) {
	if port == 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics endpoint", zap.String("address", addr))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics endpoint failed", zap.Error(err))
		}
	}()
}
