package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Feed metrics
	FeedRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lofmon_feed_refreshes_total",
			Help: "Total number of opportunity feed refreshes",
		},
		[]string{"status"}, // status: success|error|superseded
	)

	FeedRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lofmon_feed_refresh_duration_seconds",
			Help:    "Feed refresh duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	OpportunityCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lofmon_opportunities",
			Help: "Number of opportunities in the current snapshot",
		},
	)

	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lofmon_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key", "result"}, // result: hit|miss
	)

	// Holding metrics
	HoldingStatusChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lofmon_holding_status_changes_total",
			Help: "Total number of holding lifecycle transitions",
		},
	)

	ActiveHoldings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lofmon_active_holdings",
			Help: "Number of holdings not yet settled",
		},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lofmon_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lofmon_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(
		FeedRefreshes,
		FeedRefreshDuration,
		OpportunityCount,
		CacheLookups,
		HoldingStatusChanges,
		ActiveHoldings,
		WorkerExecutions,
		WorkerDuration,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on the given address. Blocks; run in a
// goroutine.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
