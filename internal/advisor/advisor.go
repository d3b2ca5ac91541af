// Package advisor runs one submission end to end: validate the reading,
// predict the ideal temperature, judge it against the product's safe range,
// store the record, then alert and publish.
package advisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
	"github.com/coldchain-go/coldchain/internal/notification"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
	"github.com/coldchain-go/coldchain/internal/predictor"
)

// RecordStore is the write side of the record store.
type RecordStore interface {
	Append(ctx context.Context, p *datastore.Prediction) error
}

// Notifier delivers out-of-range alerts.
type Notifier interface {
	Enabled() bool
	NotifyAlert(ctx context.Context, recipient string, product coldchain.Product, predicted float64, v coldchain.Verdict) error
}

// Publisher forwards stored records to downstream consumers.
type Publisher interface {
	PublishRecord(ctx context.Context, rec *datastore.Prediction, safeMin, safeMax float64) error
}

// Submission is one form submit.
type Submission struct {
	Reading coldchain.Reading
}

// Outcome is the result of a stored submission. Warnings carry failures
// that happened after the record was committed.
type Outcome struct {
	Record    *datastore.Prediction
	Verdict   coldchain.Verdict
	EmailSent bool
	Warnings  []string
}

// Advisor serialises submissions. A nil notifier or publisher disables that step.
type Advisor struct {
	mu        sync.Mutex
	predictor predictor.Predictor
	store     RecordStore
	notifier  Notifier
	publisher Publisher
	metrics   *metrics.PredictionMetrics
	location  *time.Location
	now       func() time.Time
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithNotifier enables alert emails.
func WithNotifier(n Notifier) Option {
	return func(a *Advisor) { a.notifier = n }
}

// WithPublisher enables record publishing.
func WithPublisher(p Publisher) Option {
	return func(a *Advisor) { a.publisher = p }
}

// WithMetrics records prediction metrics.
func WithMetrics(m *metrics.PredictionMetrics) Option {
	return func(a *Advisor) { a.metrics = m }
}

// WithLocation sets the timezone record timestamps are written in.
func WithLocation(loc *time.Location) Option {
	return func(a *Advisor) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithClock overrides the submission clock.
func WithClock(now func() time.Time) Option {
	return func(a *Advisor) { a.now = now }
}

// New creates an Advisor.
func New(p predictor.Predictor, store RecordStore, opts ...Option) *Advisor {
	a := &Advisor{
		predictor: p,
		store:     store,
		location:  time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Submit validates, predicts, evaluates and appends one record, then sends
// the alert email and publishes the record when applicable. Errors before
// the append abort the submission and nothing is stored. Failures after it
// become Outcome warnings; the record stays.
func (a *Advisor) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := sub.Reading
	log := GetLogger().WithContext(ctx)

	if err := r.Validate(); err != nil {
		a.metrics.RecordFailure(metrics.StageValidate)
		log.Debug("submission rejected", logger.Error(err))
		return nil, err
	}

	start := time.Now()
	predicted, err := a.predictor.Predict(ctx, r)
	inference := time.Since(start)
	if err != nil {
		a.metrics.RecordFailure(metrics.StagePredict)
		return nil, errors.New(err).
			Component("advisor").
			Category(errors.CategoryPrediction).
			Context("product_type", r.Product.String()).
			Timing("predict", inference).
			Build()
	}

	verdict, err := coldchain.Evaluate(r.Product, predicted)
	if err != nil {
		a.metrics.RecordFailure(metrics.StageEvaluate)
		return nil, err
	}

	rec := datastore.NewPrediction(&r, predicted, verdict, a.now().In(a.location))
	if err := a.store.Append(ctx, rec); err != nil {
		a.metrics.RecordFailure(metrics.StageStore)
		return nil, err
	}
	a.metrics.RecordPrediction(rec.ProductType, predicted, verdict.Alert, inference)

	log.Info("prediction recorded",
		logger.Int64("id", int64(rec.ID)),
		logger.String("product_type", rec.ProductType),
		logger.Float64("predicted_temp", predicted),
		logger.Float64("safe_min", verdict.Range.Min),
		logger.Float64("safe_max", verdict.Range.Max),
		logger.String("alert_sent", rec.AlertSent),
		logger.Duration("inference", inference))

	out := &Outcome{Record: rec, Verdict: verdict}
	a.notify(ctx, out, &r)
	a.publish(ctx, out)
	return out, nil
}

func (a *Advisor) notify(ctx context.Context, out *Outcome, r *coldchain.Reading) {
	if !notification.ShouldNotify(r.Email, out.Verdict) {
		return
	}
	if a.notifier == nil || !a.notifier.Enabled() {
		out.Warnings = append(out.Warnings, notification.ErrNotConfigured.Error())
		return
	}
	if err := a.notifier.NotifyAlert(ctx, r.Email, r.Product, out.Record.PredictedTemp, out.Verdict); err != nil {
		if errors.Is(err, notification.ErrNotConfigured) {
			out.Warnings = append(out.Warnings, err.Error())
			return
		}
		out.Warnings = append(out.Warnings, fmt.Sprintf("Email error: %v", err))
		return
	}
	out.EmailSent = true
}

func (a *Advisor) publish(ctx context.Context, out *Outcome) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishRecord(ctx, out.Record, out.Verdict.Range.Min, out.Verdict.Range.Max); err != nil {
		GetLogger().WithContext(ctx).Warn("record publish failed", logger.Error(err))
		out.Warnings = append(out.Warnings, fmt.Sprintf("MQTT publish error: %v", err))
	}
}

// ModelInfo describes the model behind the advisor.
func (a *Advisor) ModelInfo() predictor.ModelInfo {
	return a.predictor.Info()
}
