package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	searchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelflog",
		Name:      "search_requests_total",
		Help:      "Total number of search requests by category",
	}, []string{"category"})
	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelflog",
		Name:      "cache_hits_total",
		Help:      "Total number of searches served from cache by category",
	}, []string{"category"})
	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelflog",
		Name:      "cache_misses_total",
		Help:      "Total number of searches that went to a provider by category",
	}, []string{"category"})
	cacheWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shelflog",
		Name:      "cache_write_failures_total",
		Help:      "Total number of dropped cache writes",
	})
	providerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelflog",
		Name:      "provider_failures_total",
		Help:      "Total number of searches degraded to an empty result by source and kind",
	}, []string{"source", "kind"})
	providerRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shelflog",
		Name:      "provider_request_duration_seconds",
		Help:      "Histogram of outbound provider request durations by source and outcome",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.8, 10),
	}, []string{"source", "outcome"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searchRequests, cacheHits, cacheMisses, cacheWriteFailures,
			providerFailures, providerRequestDuration)
	})
}

// Search lifecycle helpers
func IncSearchRequest(category string) { searchRequests.WithLabelValues(category).Inc() }
func IncCacheHit(category string)      { cacheHits.WithLabelValues(category).Inc() }
func IncCacheMiss(category string)     { cacheMisses.WithLabelValues(category).Inc() }
func IncCacheWriteFailure()            { cacheWriteFailures.Inc() }

// IncProviderFailure counts a failure absorbed by the aggregator.
// kind is "provider" or "auth".
func IncProviderFailure(source, kind string) {
	providerFailures.WithLabelValues(source, kind).Inc()
}

// ObserveProviderRequest records one outbound HTTP attempt
func ObserveProviderRequest(source, outcome string, d time.Duration) {
	providerRequestDuration.WithLabelValues(source, outcome).Observe(d.Seconds())
}

// NewCacheEntriesGauge reports the size of an in-process cache store at scrape time
func NewCacheEntriesGauge(size func() int) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "shelflog",
		Name:      "cache_entries",
		Help:      "Number of entries held by the in-memory cache store",
	}, func() float64 { return float64(size()) })
}

// RegisterCacheEntries exports size as shelflog_cache_entries on the global registry
func RegisterCacheEntries(size func() int) error {
	return prometheus.Register(NewCacheEntriesGauge(size))
}
