package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VaultMetrics instruments assembler operations.
type VaultMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	retries    *prometheus.CounterVec
}

// NewVaultMetrics creates a Prometheus-backed vault metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewVaultMetrics() *VaultMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &VaultMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdmvault_operations_total",
				Help: "Total number of vault operations by operation and result",
			},
			[]string{"operation", "result"}, // result: "ok" or an error code
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdmvault_operation_duration_seconds",
				Help:    "Vault operation wall time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		retries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdmvault_operation_retries_total",
				Help: "Total number of retried operation attempts by operation",
			},
			[]string{"operation"},
		),
	}
}

// RecordOperation records one completed operation with its result label.
func (m *VaultMetrics) RecordOperation(operation, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordRetry records one retried attempt.
func (m *VaultMetrics) RecordRetry(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation).Inc()
}
