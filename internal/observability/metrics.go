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
	// Engine metrics
	BarsProcessed  prometheus.Counter
	BarsRejected   prometheus.Counter
	SignalsEmitted *prometheus.CounterVec
	Capital        prometheus.Gauge
	PositionOpen   prometheus.Gauge

	// Live driver metrics
	PollLatency prometheus.Histogram
	OrderErrors prometheus.Counter

	// Ingestion metrics
	BarsIngested prometheus.Counter
	FeedMessages prometheus.Counter

	// Health metrics
	LastBarTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "boundary_trader"
	}

	return &Metrics{
		BarsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "bars_processed_total",
			Help:      "Total number of bars stepped through the engine",
		}),
		BarsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "bars_rejected_total",
			Help:      "Total number of bars rejected by precondition checks",
		}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "signals_emitted_total",
			Help:      "Total number of trade signals emitted by side",
		}, []string{"side"}),
		Capital: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "capital",
			Help:      "Current free capital of the run",
		}),
		PositionOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "position_open",
			Help:      "1 when a position is open, 0 when flat",
		}),

		PollLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "poll_latency_seconds",
			Help:      "Duration of one live polling tick in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		OrderErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "order_errors_total",
			Help:      "Total number of failed order placements",
		}),

		BarsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "bars_ingested_total",
			Help:      "Total number of bars written to storage",
		}),
		FeedMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_messages_total",
			Help:      "Total number of websocket feed messages received",
		}),

		LastBarTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_bar_timestamp_ms",
			Help:      "Unix-ms timestamp of the last bar evaluated",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordBar records one evaluated bar and the run state after it.
func RecordBar(tsMs int64, capital float64, positionOpen bool) {
	DefaultMetrics.BarsProcessed.Inc()
	DefaultMetrics.Capital.Set(capital)
	DefaultMetrics.LastBarTimestamp.Set(float64(tsMs))
	if positionOpen {
		DefaultMetrics.PositionOpen.Set(1)
	} else {
		DefaultMetrics.PositionOpen.Set(0)
	}
}

// RecordSignal increments the signal counter for a side.
func RecordSignal(side string) {
	DefaultMetrics.SignalsEmitted.WithLabelValues(side).Inc()
}

// RecordRejectedBar increments the rejected bar counter.
func RecordRejectedBar() {
	DefaultMetrics.BarsRejected.Inc()
}

// RecordPoll records the duration of one live polling tick.
func RecordPoll(seconds float64) {
	DefaultMetrics.PollLatency.Observe(seconds)
}

// RecordOrderError increments the failed order counter.
func RecordOrderError() {
	DefaultMetrics.OrderErrors.Inc()
}

// RecordBarsIngested adds to the ingested bar counter.
func RecordBarsIngested(n int) {
	DefaultMetrics.BarsIngested.Add(float64(n))
}
