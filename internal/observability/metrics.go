// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheErrors prometheus.Counter

	// Invalidation metrics
	Invalidations       *prometheus.CounterVec
	WatcherReconnects   prometheus.Counter
	WatcherNotification prometheus.Counter

	// Ledger metrics
	RPCCallLatency     *prometheus.HistogramVec
	AccountsFetched    *prometheus.CounterVec
	SkippedInvestments prometheus.Counter

	// Transaction metrics
	TxSubmitted prometheus.Counter
	TxConfirmed prometheus.Counter
	TxFailed    *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Stats metrics
	StatsSnapshotsWritten prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "crowd_estate"
	}

	return &Metrics{
		// Cache metrics
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits by key kind",
		}, []string{"kind"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses by key kind",
		}, []string{"kind"}),
		CacheErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Total number of cache backend errors degraded to live fetches",
		}),

		// Invalidation metrics
		Invalidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total number of cache invalidations by trigger",
		}, []string{"trigger"}),
		WatcherReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "reconnects_total",
			Help:      "Total number of log subscription reconnects",
		}),
		WatcherNotification: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "notifications_total",
			Help:      "Total number of program log notifications received",
		}),

		// Ledger metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_latency_seconds",
			Help:      "RPC call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		AccountsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "accounts_fetched_total",
			Help:      "Total number of program accounts fetched by kind",
		}, []string{"kind"}),
		SkippedInvestments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "skipped_investments_total",
			Help:      "Total number of investments skipped because their property was missing",
		}),

		// Transaction metrics
		TxSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "submitted_total",
			Help:      "Total number of transactions submitted",
		}),
		TxConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "confirmed_total",
			Help:      "Total number of transactions confirmed",
		}),
		TxFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "failed_total",
			Help:      "Total number of failed transaction submissions by reason",
		}, []string{"reason"}),

		// HTTP metrics
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Stats metrics
		StatsSnapshotsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "snapshots_written_total",
			Help:      "Total number of platform stats snapshots written to history",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCacheHit increments the cache hit counter for a key kind.
func RecordCacheHit(kind string) {
	DefaultMetrics.CacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss increments the cache miss counter for a key kind.
func RecordCacheMiss(kind string) {
	DefaultMetrics.CacheMisses.WithLabelValues(kind).Inc()
}

// RecordCacheError increments the degraded cache error counter.
func RecordCacheError() {
	DefaultMetrics.CacheErrors.Inc()
}

// RecordInvalidation records a cache invalidation and its trigger.
func RecordInvalidation(trigger string) {
	DefaultMetrics.Invalidations.WithLabelValues(trigger).Inc()
}

// RecordWatcherReconnect increments the watcher reconnect counter.
func RecordWatcherReconnect() {
	DefaultMetrics.WatcherReconnects.Inc()
}

// RecordWatcherNotification increments the watcher notification counter.
func RecordWatcherNotification() {
	DefaultMetrics.WatcherNotification.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordAccountsFetched adds to the fetched accounts counter for a kind.
func RecordAccountsFetched(kind string, n int) {
	DefaultMetrics.AccountsFetched.WithLabelValues(kind).Add(float64(n))
}

// RecordSkippedInvestments adds to the skipped investments counter.
func RecordSkippedInvestments(n int) {
	DefaultMetrics.SkippedInvestments.Add(float64(n))
}

// RecordTxSubmitted increments the submitted transaction counter.
func RecordTxSubmitted() {
	DefaultMetrics.TxSubmitted.Inc()
}

// RecordTxConfirmed increments the confirmed transaction counter.
func RecordTxConfirmed() {
	DefaultMetrics.TxConfirmed.Inc()
}

// RecordTxFailed records a failed submission by reason.
func RecordTxFailed(reason string) {
	DefaultMetrics.TxFailed.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an HTTP request duration.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route, status).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordStatsSnapshot increments the stats snapshot counter.
func RecordStatsSnapshot() {
	DefaultMetrics.StatsSnapshotsWritten.Inc()
}
