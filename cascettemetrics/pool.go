// Package cascettemetrics collects the Prometheus instrumentation shared by
// the CDN pool, multi-tier cache, and streaming pipeline. Each component
// group is its own struct so callers wire only what they run.
package cascettemetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pool is the CDN connection pool's metric set: per-server success/failure
// counts, response time histograms, circuit-breaker state, and pool-wide
// throughput counters.
type Pool struct {
	ActiveConnections     prometheus.Gauge
	SuccessfulRequests    *prometheus.CounterVec
	FailedRequests        *prometheus.CounterVec
	CircuitBreakerState   *prometheus.GaugeVec
	ResponseTime          *prometheus.HistogramVec
	BytesDownloaded       prometheus.Counter
	RangeRequests         prometheus.Counter
	RangesCoalesced       prometheus.Counter
	CDNFailovers          prometheus.Counter
	RetryAttempts         prometheus.Counter
	CurrentBandwidthBytes prometheus.Gauge
}

// NewPool registers a Pool's collectors against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with other tests'
// default-registerer registrations.
func NewPool(reg prometheus.Registerer) *Pool {
	f := promauto.With(reg)
	return &Pool{
		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "pool_active_connections",
			Help: "Number of CDN connections currently in flight.",
		}),
		SuccessfulRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pool_successful_requests_total",
			Help: "Successful CDN requests by server host.",
		}, []string{"host"}),
		FailedRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pool_failed_requests_total",
			Help: "Failed CDN requests by server host.",
		}, []string{"host"}),
		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pool_circuit_breakers",
			Help: "Circuit breaker state by server host (0=closed, 1=open, 2=half-open).",
		}, []string{"host"}),
		ResponseTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pool_response_time_seconds",
			Help:    "CDN response time by server host.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"host"}),
		BytesDownloaded: f.NewCounter(prometheus.CounterOpts{
			Name: "bytes_downloaded_total",
			Help: "Total bytes downloaded from CDN servers.",
		}),
		RangeRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "range_requests_total",
			Help: "Total HTTP range requests issued.",
		}),
		RangesCoalesced: f.NewCounter(prometheus.CounterOpts{
			Name: "ranges_coalesced_total",
			Help: "Total byte ranges merged by range coalescing.",
		}),
		CDNFailovers: f.NewCounter(prometheus.CounterOpts{
			Name: "cdn_failovers_total",
			Help: "Total times a request moved to a different CDN server.",
		}),
		RetryAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total retry attempts across all CDN servers.",
		}),
		CurrentBandwidthBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "current_bandwidth_bytes_per_sec",
			Help: "Most recently observed download bandwidth in bytes/sec.",
		}),
	}
}
