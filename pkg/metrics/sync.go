package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records background reconciliation calls against the storefront.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	dropped  *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of cart sync calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_success_total",
		Help: "Cart sync calls that returned an authoritative cart.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure_total",
		Help: "Cart sync calls that failed and left local state untouched.",
	}, []string{"operation"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_stale_total",
		Help: "Cart responses discarded because a newer local mutation happened.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure, dropped)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		dropped:  dropped,
	}
}

// ObserveDuration records the duration for the named operation.
func (s *SyncMetrics) ObserveDuration(operation string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (s *SyncMetrics) IncSuccess(operation string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (s *SyncMetrics) IncFailure(operation string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncStale counts a response that arrived after a newer local mutation.
func (s *SyncMetrics) IncStale(operation string) {
	if s == nil || s.dropped == nil {
		return
	}
	s.dropped.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
