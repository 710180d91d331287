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
	// Feed metrics
	FeedFetchesTotal *prometheus.CounterVec
	FeedFetchLatency *prometheus.HistogramVec

	// Aggregator metrics
	PollsTotal          prometheus.Counter
	StaleResultsDropped prometheus.Counter
	ArchiveWriteErrors  prometheus.Counter
	LastSuccessfulPoll  prometheus.Gauge
	CachedTrades        prometheus.Gauge

	// Endpoint metrics
	ProbesTotal  *prometheus.CounterVec
	ProbeLatency prometheus.Histogram

	// Solana RPC metrics
	RPCCallLatency *prometheus.HistogramVec

	// Order metrics
	CancelsTotal         *prometheus.CounterVec
	CancelConfirmLatency prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_dex_desk"
	}

	return &Metrics{
		// Feed metrics
		FeedFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Total number of feed fetches by resource and outcome",
		}, []string{"resource", "outcome"}),
		FeedFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_latency_seconds",
			Help:      "Feed fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),

		// Aggregator metrics
		PollsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "polls_total",
			Help:      "Total number of aggregator poll ticks",
		}),
		StaleResultsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "stale_results_dropped_total",
			Help:      "Total number of poll results discarded after a stop or market switch",
		}),
		ArchiveWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "archive_write_errors_total",
			Help:      "Total number of failed trade archive writes",
		}),
		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "last_successful_poll_timestamp",
			Help:      "Unix timestamp of the last poll that updated any cache",
		}),
		CachedTrades: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "cached_trades",
			Help:      "Number of trades in the current cache",
		}),

		// Endpoint metrics
		ProbesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "probes_total",
			Help:      "Total number of endpoint probes by outcome",
		}, []string{"outcome"}),
		ProbeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "endpoint",
			Name:      "probe_latency_seconds",
			Help:      "Endpoint probe latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Solana RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Order metrics
		CancelsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "cancels_total",
			Help:      "Total number of cancel submissions by final status",
		}, []string{"status"}),
		CancelConfirmLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "cancel_confirm_latency_seconds",
			Help:      "Latency from cancel submission to confirmation in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFeedFetch records one feed fetch with its outcome
// ("ok", "no_data" or "error").
func RecordFeedFetch(resource, outcome string, seconds float64) {
	DefaultMetrics.FeedFetchesTotal.WithLabelValues(resource, outcome).Inc()
	DefaultMetrics.FeedFetchLatency.WithLabelValues(resource).Observe(seconds)
}

// RecordPoll increments the aggregator poll counter.
func RecordPoll() {
	DefaultMetrics.PollsTotal.Inc()
}

// RecordStaleResultDropped increments the stale result counter.
func RecordStaleResultDropped() {
	DefaultMetrics.StaleResultsDropped.Inc()
}

// RecordArchiveWriteError increments the archive write error counter.
func RecordArchiveWriteError() {
	DefaultMetrics.ArchiveWriteErrors.Inc()
}

// RecordCacheUpdate updates the poll freshness gauges.
func RecordCacheUpdate(unixSeconds int64, cachedTrades int) {
	DefaultMetrics.LastSuccessfulPoll.Set(float64(unixSeconds))
	DefaultMetrics.CachedTrades.Set(float64(cachedTrades))
}

// RecordProbe records an endpoint probe ("ok" or "failed").
func RecordProbe(outcome string, seconds float64) {
	DefaultMetrics.ProbesTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.ProbeLatency.Observe(seconds)
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordCancel records the final status of a cancel attempt.
func RecordCancel(status string) {
	DefaultMetrics.CancelsTotal.WithLabelValues(status).Inc()
}

// RecordCancelConfirmLatency records submit-to-confirm latency.
func RecordCancelConfirmLatency(seconds float64) {
	DefaultMetrics.CancelConfirmLatency.Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
