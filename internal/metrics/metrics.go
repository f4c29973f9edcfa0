// Package metrics holds the Prometheus collectors exported by the engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		BlockTotal, RunTotal, RunDuration, LedgerSize, CredentialCaptures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// BlockTotal counts block writes by outcome.
var BlockTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "artistban_block_total",
		Help: "Block writes by outcome.",
	},
	[]string{"mode", "outcome"}, // automatic|manual, success|auth_expired|failure
)

// RunTotal counts automatic passes by terminal state.
var RunTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "artistban_run_total",
		Help: "Automatic passes by terminal state.",
	},
	[]string{"state"}, // done|skipped|aborted
)

// RunDuration observes how long non-skipped passes take.
var RunDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "artistban_run_duration_seconds",
		Help:    "Duration of automatic passes in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	},
)

// LedgerSize reports the number of processed identifiers after the last update.
var LedgerSize = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "artistban_ledger_size",
		Help: "Number of artist identifiers in the local ledger.",
	},
)

// CredentialCaptures counts bearer tokens observed on host traffic.
var CredentialCaptures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "artistban_credential_captures_total",
		Help: "Authorization headers captured from host traffic.",
	},
)

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
