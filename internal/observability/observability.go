// Package observability owns the Prometheus registry and the per-component collectors.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry     *prometheus.Registry
	Prediction   *metrics.PredictionMetrics
	Datastore    *metrics.DatastoreMetrics
	Notification *metrics.NotificationMetrics
	MQTT         *metrics.MQTTMetrics
	Errors       *metrics.ErrorMetrics
}

// NewMetrics creates a registry with process and Go runtime collectors plus the component metrics.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{registry: registry}

	var err error
	if m.Prediction, err = metrics.NewPredictionMetrics(registry); err != nil {
		return nil, wrapInitError(err, "prediction")
	}
	if m.Datastore, err = metrics.NewDatastoreMetrics(registry); err != nil {
		return nil, wrapInitError(err, "datastore")
	}
	if m.Notification, err = metrics.NewNotificationMetrics(registry); err != nil {
		return nil, wrapInitError(err, "notification")
	}
	if m.MQTT, err = metrics.NewMQTTMetrics(registry); err != nil {
		return nil, wrapInitError(err, "mqtt")
	}
	if m.Errors, err = metrics.NewErrorMetrics(registry); err != nil {
		return nil, wrapInitError(err, "errors")
	}

	return m, nil
}

// InstallErrorReporter counts every enhanced error built from now on in
// coldchain_errors_total.
func (m *Metrics) InstallErrorReporter() {
	errors.SetReporter(m.Errors)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func wrapInitError(err error, collector string) error {
	return errors.New(err).
		Component("observability").
		Category(errors.CategoryConfiguration).
		Context("collector", collector).
		Build()
}
