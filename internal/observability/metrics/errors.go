package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coldchain-go/coldchain/internal/errors"
)

// ErrorMetrics counts enhanced errors by category and component.
type ErrorMetrics struct {
	ErrorsTotal *prometheus.CounterVec
	registry    *prometheus.Registry
}

// NewErrorMetrics creates and registers ErrorMetrics.
func NewErrorMetrics(registry *prometheus.Registry) (*ErrorMetrics, error) {
	m := &ErrorMetrics{registry: registry}
	m.ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coldchain_errors_total",
		Help: "Total number of errors built, by category and component",
	}, []string{"category", "component"})
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register error metrics: %w", err)
	}
	return m, nil
}

// ReportError implements errors.Reporter.
func (m *ErrorMetrics) ReportError(ee *errors.EnhancedError) {
	if m == nil || ee == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(string(ee.Category), ee.GetComponent()).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *ErrorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ErrorsTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *ErrorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ErrorsTotal.Describe(ch)
}
