// Package metrics exposes Prometheus instrumentation for the storage layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StoreWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ketotrack_store_writes_total",
			Help: "Store writes by target (local, remote) and outcome (ok, error)",
		},
		[]string{"target", "outcome"},
	)

	CloudFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ketotrack_cloud_fallbacks_total",
			Help: "Operations that fell back to the local store after a remote failure",
		},
		[]string{"op"},
	)

	Migrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ketotrack_migrations_total",
			Help: "Migration passes by outcome (completed, skipped, partial, failed)",
		},
		[]string{"outcome"},
	)

	MigratedDocuments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ketotrack_migrated_documents_total",
			Help: "Metric documents written to the remote store by migration",
		},
	)

	RemoteCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ketotrack_remote_call_duration_seconds",
			Help:    "Latency of remote store calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(StoreWrites)
	prometheus.MustRegister(CloudFallbacks)
	prometheus.MustRegister(Migrations)
	prometheus.MustRegister(MigratedDocuments)
	prometheus.MustRegister(RemoteCallDuration)
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRemote records the latency of a remote call started at start.
func ObserveRemote(op string, start time.Time) {
	RemoteCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
