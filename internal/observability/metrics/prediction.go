package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PredictionMetrics contains Prometheus metrics for submissions and model inference.
type PredictionMetrics struct {
	PredictionsTotal   *prometheus.CounterVec // by product and verdict
	PredictionDuration prometheus.Histogram
	PredictedTemp      *prometheus.GaugeVec // last prediction by product
	FailuresTotal      *prometheus.CounterVec // by stage
	registry           *prometheus.Registry
}

// NewPredictionMetrics creates and registers PredictionMetrics.
func NewPredictionMetrics(registry *prometheus.Registry) (*PredictionMetrics, error) {
	m := &PredictionMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register prediction metrics: %w", err)
	}
	return m, nil
}

func (m *PredictionMetrics) initMetrics() {
	m.PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coldchain_predictions_total",
		Help: "Total number of stored predictions by product type and verdict",
	}, []string{"product_type", "verdict"}) // verdict: in_range, out_of_range

	m.PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "coldchain_prediction_duration_seconds",
		Help:    "Time spent in model inference",
		Buckets: durationBuckets,
	})

	m.PredictedTemp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "coldchain_last_predicted_temp_celsius",
		Help: "Most recent predicted ideal temperature by product type",
	}, []string{"product_type"})

	m.FailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coldchain_submission_failures_total",
		Help: "Total number of rejected or failed submissions by stage",
	}, []string{"stage"})
}

// RecordPrediction records a stored prediction.
func (m *PredictionMetrics) RecordPrediction(product string, temp float64, alert bool, inference time.Duration) {
	if m == nil {
		return
	}
	verdict := "in_range"
	if alert {
		verdict = "out_of_range"
	}
	m.PredictionsTotal.WithLabelValues(product, verdict).Inc()
	m.PredictionDuration.Observe(inference.Seconds())
	m.PredictedTemp.WithLabelValues(product).Set(temp)
}

// RecordFailure counts a submission that stopped at stage.
func (m *PredictionMetrics) RecordFailure(stage string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(stage).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *PredictionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.PredictionsTotal.Collect(ch)
	ch <- m.PredictionDuration
	m.PredictedTemp.Collect(ch)
	m.FailuresTotal.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *PredictionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.PredictionsTotal.Describe(ch)
	ch <- m.PredictionDuration.Desc()
	m.PredictedTemp.Describe(ch)
	m.FailuresTotal.Describe(ch)
}
