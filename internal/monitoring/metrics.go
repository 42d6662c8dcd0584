package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ordersOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_engine_orders_opened_total",
			Help: "Orders opened, by instrument and direction",
		},
		[]string{"ticker", "direction"},
	)

	ordersClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_engine_orders_closed_total",
			Help: "Orders closed, by instrument and close reason",
		},
		[]string{"ticker", "reason"},
	)

	runsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_engine_runs_completed_total",
			Help: "Backtest runs finished, by outcome",
		},
		[]string{"outcome"},
	)

	runEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "grid_engine_run_equity",
			Help: "Latest marked equity per run",
		},
		[]string{"run"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_engine_errors_total",
			Help: "Engine errors by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(ordersOpened)
	prometheus.MustRegister(ordersClosed)
	prometheus.MustRegister(runsCompleted)
	prometheus.MustRegister(runEquity)
	prometheus.MustRegister(errorsTotal)
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOpen counts an opened order.
func RecordOpen(ticker, direction string) {
	ordersOpened.WithLabelValues(ticker, direction).Inc()
}

// RecordClose counts a closed order by reason.
func RecordClose(ticker, reason string) {
	ordersClosed.WithLabelValues(ticker, reason).Inc()
}

// RecordRun counts a finished run; outcome is "ok" or "error".
func RecordRun(outcome string) {
	runsCompleted.WithLabelValues(outcome).Inc()
}

// UpdateEquity publishes the latest marked equity of a run.
func UpdateEquity(run string, equity float64) {
	runEquity.WithLabelValues(run).Set(equity)
}

// RecordError counts an engine error by kind.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}
