package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics contains Prometheus metrics for alert email delivery.
type NotificationMetrics struct {
	AlertsTotal      *prometheus.CounterVec // by product and outcome
	DeliveryDuration *prometheus.HistogramVec
	registry         *prometheus.Registry
}

// NewNotificationMetrics creates and registers NotificationMetrics.
func NewNotificationMetrics(registry *prometheus.Registry) (*NotificationMetrics, error) {
	m := &NotificationMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register notification metrics: %w", err)
	}
	return m, nil
}

func (m *NotificationMetrics) initMetrics() {
	m.AlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coldchain_alert_emails_total",
		Help: "Total number of alert emails by product type and outcome",
	}, []string{"product_type", "outcome"}) // outcome: sent, failed, disabled

	m.DeliveryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coldchain_alert_email_duration_seconds",
		Help:    "Time taken to hand an alert email to the relay",
		Buckets: durationBuckets,
	}, []string{"provider"})
}

// RecordAlert records the outcome of one alert email.
func (m *NotificationMetrics) RecordAlert(product, outcome, provider string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(product, outcome).Inc()
	if outcome != NotificationDisabled {
		m.DeliveryDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// Collect implements the prometheus.Collector interface.
func (m *NotificationMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AlertsTotal.Collect(ch)
	m.DeliveryDuration.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *NotificationMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AlertsTotal.Describe(ch)
	m.DeliveryDuration.Describe(ch)
}
