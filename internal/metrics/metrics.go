// Package metrics exposes search and cache counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/versefinder/internal/search"
)

const namespace = "versefinder"

// Cache lookup results recorded by CacheResult.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Registry owns the service collectors. It implements search.Monitor.
type Registry struct {
	reg *prometheus.Registry

	tierQueries  *prometheus.CounterVec
	tierDuration *prometheus.HistogramVec
	tierHits     *prometheus.HistogramVec
	cache        *prometheus.CounterVec
}

var _ search.Monitor = (*Registry)(nil)

// New creates a registry with the Go runtime and process collectors attached.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		tierQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_queries_total",
			Help:      "Search tier store queries by tier and outcome.",
		}, []string{"tier", "outcome"}),
		tierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tier_duration_seconds",
			Help:      "Search tier store query latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"tier"}),
		tierHits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tier_hits",
			Help:      "Verses returned by a search tier before truncation.",
			Buckets:   []float64{0, 1, 5, 10, 20, 49, 50, 100},
		}, []string{"tier"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search result cache lookups by result.",
		}, []string{"result"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.tierQueries,
		r.tierDuration,
		r.tierHits,
		r.cache,
	)
	return r
}

// TierCompleted records one tier execution.
func (r *Registry) TierCompleted(tier search.Tier, hits int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	name := tier.String()

	r.tierQueries.WithLabelValues(name, outcome).Inc()
	r.tierDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err == nil {
		r.tierHits.WithLabelValues(name).Observe(float64(hits))
	}
}

// CacheResult records one search cache lookup (CacheHit, CacheMiss or CacheError).
// A nil Registry records nothing.
func (r *Registry) CacheResult(result string) {
	if r == nil {
		return
	}
	r.cache.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
