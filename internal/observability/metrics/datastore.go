package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for record store operations.
type DatastoreMetrics struct {
	OperationsTotal   *prometheus.CounterVec   // by operation and status
	OperationDuration *prometheus.HistogramVec // by operation
	RecordCount       prometheus.Gauge
	registry          *prometheus.Registry
}

// NewDatastoreMetrics creates and registers DatastoreMetrics.
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register datastore metrics: %w", err)
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() {
	m.OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coldchain_store_operations_total",
		Help: "Total number of record store operations by operation and status",
	}, []string{"operation", "status"})

	m.OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coldchain_store_operation_duration_seconds",
		Help:    "Duration of record store operations",
		Buckets: durationBuckets,
	}, []string{"operation"})

	m.RecordCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coldchain_store_records",
		Help: "Number of prediction records in the store as of the last read",
	})
}

// RecordOperation records one store operation.
func (m *DatastoreMetrics) RecordOperation(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetRecordCount updates the record count gauge.
func (m *DatastoreMetrics) SetRecordCount(n int64) {
	if m == nil {
		return
	}
	m.RecordCount.Set(float64(n))
}

// Collect implements the prometheus.Collector interface.
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	m.OperationsTotal.Collect(ch)
	m.OperationDuration.Collect(ch)
	ch <- m.RecordCount
}

// Describe implements the prometheus.Collector interface.
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.OperationsTotal.Describe(ch)
	m.OperationDuration.Describe(ch)
	ch <- m.RecordCount.Desc()
}
