// Package observability holds the Prometheus metrics for the ledger.
//
// Metrics are registered on the default registry via promauto and exposed
// by the API server at /metrics when enabled.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dayledger"

// Result labels for LedgerOperations.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
	ResultNoop     = "noop"
)

// Outcome labels for Rollovers.
const (
	RolloverRecorded = "recorded"
	RolloverEmpty    = "empty"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// LedgerOperations counts ledger operations by name and result.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Total ledger operations by operation and result.",
}, []string{"op", "result"})

// Rollovers counts day close-outs; empty days advance without a history record.
var Rollovers = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "rollovers_total",
	Help:      "Total day rollovers by outcome (recorded, empty).",
}, []string{"outcome"})

// DailyScore tracks the score of the open day.
var DailyScore = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "daily_score",
	Help:      "Net score of the currently open day.",
})

// RollingTotal tracks the projected grand total including the open day.
var RollingTotal = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "rolling_total",
	Help:      "Rolling total across closed days plus the open day.",
})

// ─── State Store Metrics ────────────────────────────────────────────────────

// StateSaveDuration tracks document save latency per backend.
var StateSaveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "state",
	Name:      "save_duration_seconds",
	Help:      "Latency of persisting the ledger document.",
	Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .5, 1},
}, []string{"backend"})

// StateFieldsDefaulted counts fields replaced by defaults while loading.
var StateFieldsDefaulted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "state",
	Name:      "fields_defaulted_total",
	Help:      "Persisted document fields replaced by defaults during load.",
}, []string{"field"})

// ─── Helpers ────────────────────────────────────────────────────────────────

// ObserveOperation records one ledger operation outcome.
func ObserveOperation(op, result string) {
	LedgerOperations.WithLabelValues(op, result).Inc()
}

// ObserveScores publishes the current daily score and projected total.
func ObserveScores(daily, rolling float64) {
	DailyScore.Set(daily)
	RollingTotal.Set(rolling)
}

// ObserveSave records how long a save against backend took.
func ObserveSave(backend string, started time.Time) {
	StateSaveDuration.WithLabelValues(backend).Observe(time.Since(started).Seconds())
}
