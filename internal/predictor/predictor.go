// Package predictor wraps the pre-trained ideal temperature model behind a
// narrow interface: one reading in, one temperature out.
package predictor

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
)

// FeatureSchema is the ordered list of input features every model must declare.
var FeatureSchema = []string{
	"product_type",
	"external_temp",
	"current_room_temp",
	"humidity",
	"volume_kg",
	"packaging_type",
	"storage_time_hr",
	"airflow_rating",
}

// ErrSchemaMismatch is returned when a model artifact does not accept the
// advisor's feature schema.
var ErrSchemaMismatch = errors.NewStd("model feature schema mismatch")

// Predictor predicts the ideal storage temperature for a reading.
type Predictor interface {
	// Predict returns the ideal temperature in °C, rounded to two decimals.
	Predict(ctx context.Context, r coldchain.Reading) (float64, error)
	Info() ModelInfo
	Close() error
}

// ModelInfo describes the loaded model artifact.
type ModelInfo struct {
	Type     string    `json:"type"`
	Path     string    `json:"path"`
	Version  string    `json:"version"`
	Features []string  `json:"features"`
	LoadedAt time.Time `json:"loaded_at"`
}

// RoundTemp rounds a temperature to two decimal places, halves to even.
func RoundTemp(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Load opens the model artifact configured in settings. It is called once at
// process start; any error, including a schema mismatch, is fatal.
func Load(settings *conf.Settings) (Predictor, error) {
	start := time.Now()
	model := settings.Model

	var (
		p   Predictor
		err error
	)
	switch model.Type {
	case conf.ModelTypeLinear, "":
		p, err = LoadLinear(model.Path)
	case conf.ModelTypeTFLite:
		p, err = LoadTFLite(model.Path, model.Threads)
	default:
		err = errors.Newf("unsupported model type %q", model.Type).
			Component("predictor").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err != nil {
		return nil, err
	}

	info := p.Info()
	GetLogger().Info("model loaded",
		logger.String("type", info.Type),
		logger.String("path", info.Path),
		logger.String("version", info.Version),
		logger.Duration("load_time", time.Since(start)))

	return p, nil
}

// checkSchema verifies that declared matches FeatureSchema exactly, in order.
func checkSchema(declared []string, path string, modelType string) error {
	if slices.Equal(declared, FeatureSchema) {
		return nil
	}
	return errors.New(ErrSchemaMismatch).
		Component("predictor").
		Category(errors.CategoryModelLoad).
		ModelContext(path, modelType).
		Context("declared_features", declared).
		Context("expected_features", FeatureSchema).
		Build()
}

func schemaError(path, modelType, format string, args ...any) error {
	return errors.New(fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))).
		Component("predictor").
		Category(errors.CategoryModelLoad).
		ModelContext(path, modelType).
		Build()
}
