// Package app wires the advisor's components from settings. Commands build
// an App, use it, and Close it on the way out.
package app

import (
	"context"
	"sync"

	"github.com/coldchain-go/coldchain/internal/advisor"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
	"github.com/coldchain-go/coldchain/internal/mqtt"
	"github.com/coldchain-go/coldchain/internal/notification"
	"github.com/coldchain-go/coldchain/internal/observability"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
	"github.com/coldchain-go/coldchain/internal/predictor"
)

// App holds the long-lived components of one process.
type App struct {
	Settings  *conf.Settings
	Metrics   *observability.Metrics
	Store     datastore.Interface
	Predictor predictor.Predictor
	Notifier  *notification.AlertNotifier
	Publisher *mqtt.Publisher
	Advisor   *advisor.Advisor

	closeOnce sync.Once
}

// New opens the record store, loads the model and sets up alerting and
// publishing. A model load failure is fatal. An unreachable MQTT broker is
// not: records are still stored and publish failures surface as warnings.
func New(ctx context.Context, settings *conf.Settings) (*App, error) {
	log := GetLogger()
	a := &App{Settings: settings}

	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	if a.Metrics, err = observability.NewMetrics(); err != nil {
		return nil, err
	}
	a.Metrics.InstallErrorReporter()

	if a.Store, err = OpenStore(settings, a.Metrics); err != nil {
		return nil, err
	}

	if a.Predictor, err = predictor.Load(settings); err != nil {
		a.Close()
		return nil, err
	}

	if a.Notifier, err = notification.NewAlertNotifier(settings, a.Metrics.Notification); err != nil {
		a.Close()
		return nil, err
	}
	if !a.Notifier.Enabled() {
		log.Info("alert emails disabled")
	}

	opts := []advisor.Option{
		advisor.WithNotifier(a.Notifier),
		advisor.WithMetrics(a.Metrics.Prediction),
		advisor.WithLocation(loc),
	}

	if settings.MQTT.Enabled {
		client, err := mqtt.NewClient(mqtt.ConfigFromSettings(settings), a.Metrics.MQTT)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			log.Warn("MQTT broker unreachable, records will not be published until it connects",
				logger.Error(err))
		}
		a.Publisher = mqtt.NewPublisher(client, settings.Main.Name)
		opts = append(opts, advisor.WithPublisher(a.Publisher))
	}

	a.Advisor = advisor.New(a.Predictor, a.Store, opts...)
	return a, nil
}

// OpenStore creates and opens the configured record store.
func OpenStore(settings *conf.Settings, m *observability.Metrics) (datastore.Interface, error) {
	var dm *metrics.DatastoreMetrics
	if m != nil {
		dm = m.Datastore
	}
	store, err := datastore.New(settings, dm)
	if err != nil {
		return nil, err
	}
	if err := store.Open(); err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases every component that was opened. It is safe to call more
// than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		log := GetLogger()
		if a.Publisher != nil {
			a.Publisher.Close()
		}
		if a.Predictor != nil {
			if err := a.Predictor.Close(); err != nil {
				log.Warn("failed to close model", logger.Error(err))
			}
		}
		if a.Store != nil {
			if err := a.Store.Close(); err != nil && !errors.IsCategory(err, errors.CategoryState) {
				log.Warn("failed to close record store", logger.Error(err))
			}
		}
	})
}
