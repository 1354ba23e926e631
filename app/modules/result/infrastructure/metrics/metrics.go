package resultmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResultMetrics records service-level measurements for result writes.
type ResultMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, eventID string)
	RecordOperationSuccess(ctx context.Context, operation, eventID string)
	RecordOperationFailure(ctx context.Context, operation, eventID string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordCascade(ctx context.Context, eventID string, scanned, changed int)
	RecordRecordChange(ctx context.Context, eventID, metric, tier string)
}

// PrometheusMetrics implements ResultMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cascadeSize   *prometheus.HistogramVec
	recordChanges *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "results",
				Name:      "operations_total",
				Help:      "Result service operations by outcome.",
			},
			[]string{"operation", "event_id", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "results",
				Name:      "operation_duration_seconds",
				Help:      "Duration of result service operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cascadeSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "results",
				Name:      "cascade_results",
				Help:      "Results examined and relabelled per cascade repair.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"event_id", "kind"},
		),
		recordChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "results",
				Name:      "record_changes_total",
				Help:      "Record label changes by metric and new tier.",
			},
			[]string{"event_id", "metric", "tier"},
		),
	}
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, eventID string) {
	m.operations.WithLabelValues(operation, eventID, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, eventID string) {
	m.operations.WithLabelValues(operation, eventID, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, eventID string) {
	m.operations.WithLabelValues(operation, eventID, "failure").Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordCascade(_ context.Context, eventID string, scanned, changed int) {
	m.cascadeSize.WithLabelValues(eventID, "scanned").Observe(float64(scanned))
	m.cascadeSize.WithLabelValues(eventID, "changed").Observe(float64(changed))
}

func (m *PrometheusMetrics) RecordRecordChange(_ context.Context, eventID, metric, tier string) {
	if tier == "" {
		tier = "none"
	}
	m.recordChanges.WithLabelValues(eventID, metric, tier).Inc()
}

var _ ResultMetrics = (*PrometheusMetrics)(nil)

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() ResultMetrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string) {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string) {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string) {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordCascade(context.Context, string, int, int) {}
func (NoOpMetrics) RecordRecordChange(context.Context, string, string, string) {}
