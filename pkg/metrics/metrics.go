// Package metrics is the Gateway's C4 API Metrics component: monotonic
// Prometheus counters plus a by-value Snapshot type, in the style
// of a namespaced registry of category aggregators.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netgate"

// Snapshot is a consistent by-value read of the Gateway's request counters
// (spec §4.C4 / §8 invariant 7: total == successful + failed).
type Snapshot struct {
	TotalRequests      uint64
	SuccessfulRequests uint64
	FailedRequests     uint64
	RetryCount         uint64
	BreakerRejections  uint64
	AvgResponseTimeMs  float64
	LastRequestAt      time.Time
}

// SuccessRate returns successful/total, defined as 1.0 when total is zero
// (spec: "derived rates guard against division by zero").
func (s Snapshot) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 1.0
	}
	return float64(s.SuccessfulRequests) / float64(s.TotalRequests)
}

// FailureRate returns failed/total, defined as 0.0 when total is zero.
func (s Snapshot) FailureRate() float64 {
	if s.TotalRequests == 0 {
		return 0.0
	}
	return float64(s.FailedRequests) / float64(s.TotalRequests)
}

// Registry is the process-global metrics aggregator. All counters are
// plain atomics for the by-value Snapshot, which the /metrics endpoint
// serves; Prometheus collectors mirror them in the Registerer passed to
// NewRegistry.
type Registry struct {
	totalRequests      atomic.Uint64
	successfulRequests atomic.Uint64
	failedRequests     atomic.Uint64
	retryCount         atomic.Uint64
	breakerRejections  atomic.Uint64

	mu               sync.Mutex
	responseTimeSum  time.Duration
	lastRequestAt    time.Time

	promTotal       prometheus.Counter
	promSuccess     prometheus.Counter
	promFailed      prometheus.Counter
	promRetries     prometheus.Counter
	promRejections  prometheus.Counter
	promResponseSec prometheus.Histogram
	promErrorType   *prometheus.CounterVec
	promBreakerGauge *prometheus.GaugeVec

	promCacheHits   *prometheus.CounterVec
	promCacheMisses *prometheus.CounterVec
	promCachePuts   *prometheus.CounterVec
	promCacheEvict  *prometheus.CounterVec
	promCacheInval  *prometheus.CounterVec
}

// NewRegistry constructs a Registry and registers its collectors with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		promTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total",
			Help: "Total outbound Inventory requests attempted.",
		}),
		promSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_successful_total",
			Help: "Outbound Inventory requests that succeeded.",
		}),
		promFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_failed_total",
			Help: "Outbound Inventory requests that failed.",
		}),
		promRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "retries_total",
			Help: "Retry attempts issued by the retry engine.",
		}),
		promRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "circuit_breaker_rejections_total",
			Help: "Requests rejected outright by an open circuit breaker.",
		}),
		promResponseSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "response_duration_seconds",
			Help:    "Outbound Inventory request duration.",
			Buckets: prometheus.DefBuckets,
		}),
		promErrorType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "errors_total",
			Help: "Outbound Inventory errors, labeled by classification.",
		}, []string{"type"}),
		promBreakerGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api", Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
		}, []string{"target"}),
		promCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "hits_total", Help: "Fresh cache hits.",
		}, []string{"cache"}),
		promCacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "misses_total", Help: "Fresh cache misses.",
		}, []string{"cache"}),
		promCachePuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "puts_total", Help: "Fresh cache writes.",
		}, []string{"cache"}),
		promCacheEvict: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "evictions_total", Help: "Fresh cache FIFO evictions.",
		}, []string{"cache"}),
		promCacheInval: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "invalidations_total", Help: "Fresh cache invalidations.",
		}, []string{"cache"}),
	}

	if reg != nil {
		reg.MustRegister(
			r.promTotal, r.promSuccess, r.promFailed, r.promRetries, r.promRejections,
			r.promResponseSec, r.promErrorType, r.promBreakerGauge,
			r.promCacheHits, r.promCacheMisses, r.promCachePuts, r.promCacheEvict, r.promCacheInval,
		)
	}

	return r
}

// RecordRequestStart marks that a request is about to be attempted.
func (r *Registry) RecordRequestStart() {
	r.totalRequests.Add(1)
	r.promTotal.Inc()
	r.mu.Lock()
	r.lastRequestAt = time.Now()
	r.mu.Unlock()
}

// RecordSuccess records a successful attempt and its duration.
func (r *Registry) RecordSuccess(duration time.Duration) {
	r.successfulRequests.Add(1)
	r.promSuccess.Inc()
	r.promResponseSec.Observe(duration.Seconds())
	r.mu.Lock()
	r.responseTimeSum += duration
	r.mu.Unlock()
}

// RecordFailure records a failed attempt, its duration, and its error
// classification label.
func (r *Registry) RecordFailure(duration time.Duration, errorType string) {
	r.failedRequests.Add(1)
	r.promFailed.Inc()
	r.promResponseSec.Observe(duration.Seconds())
	r.promErrorType.WithLabelValues(errorType).Inc()
	r.mu.Lock()
	r.responseTimeSum += duration
	r.mu.Unlock()
}

// RecordRetry records one retry attempt issued by the retry engine.
func (r *Registry) RecordRetry() {
	r.retryCount.Add(1)
	r.promRetries.Inc()
}

// RecordBreakerRejection records a call rejected outright by an open
// circuit breaker.
func (r *Registry) RecordBreakerRejection() {
	r.breakerRejections.Add(1)
	r.promRejections.Inc()
}

// SetBreakerState updates the breaker-state gauge for a named target.
// State values follow resilience.State's iota ordering (0=closed, 1=open,
// 2=half-open).
func (r *Registry) SetBreakerState(target string, state int) {
	r.promBreakerGauge.WithLabelValues(target).Set(float64(state))
}

// RecordCacheHit, RecordCacheMiss, RecordCachePut, RecordCacheEvict and
// RecordCacheInvalidation each increment the named cache's counter by one.
// Callers call them once per occurrence (not with a running total).
func (r *Registry) RecordCacheHit(cacheName string)   { r.promCacheHits.WithLabelValues(cacheName).Inc() }
func (r *Registry) RecordCacheMiss(cacheName string)  { r.promCacheMisses.WithLabelValues(cacheName).Inc() }
func (r *Registry) RecordCachePut(cacheName string)   { r.promCachePuts.WithLabelValues(cacheName).Inc() }
func (r *Registry) RecordCacheEvict(cacheName string) { r.promCacheEvict.WithLabelValues(cacheName).Inc() }
func (r *Registry) RecordCacheInvalidation(cacheName string) {
	r.promCacheInval.WithLabelValues(cacheName).Inc()
}

// Snapshot returns a consistent by-value read of the request counters.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	sum := r.responseTimeSum
	last := r.lastRequestAt
	r.mu.Unlock()

	total := r.totalRequests.Load()
	var avgMs float64
	if total > 0 {
		avgMs = float64(sum.Milliseconds()) / float64(total)
	}

	return Snapshot{
		TotalRequests:      total,
		SuccessfulRequests: r.successfulRequests.Load(),
		FailedRequests:     r.failedRequests.Load(),
		RetryCount:         r.retryCount.Load(),
		BreakerRejections:  r.breakerRejections.Load(),
		AvgResponseTimeMs:  avgMs,
		LastRequestAt:      last,
	}
}
