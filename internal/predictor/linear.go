package predictor

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
)

// LinearArtifact is the on-disk form of a linear regression model with one-hot
// encoded categorical features. It is read as YAML, so JSON works too.
type LinearArtifact struct {
	Version      string                        `yaml:"version" json:"version"`
	Features     []string                      `yaml:"features" json:"features"`
	Intercept    float64                       `yaml:"intercept" json:"intercept"`
	Coefficients map[string]float64            `yaml:"coefficients" json:"coefficients"`
	Categorical  map[string]map[string]float64 `yaml:"categorical" json:"categorical"`
}

// LinearModel scores readings as intercept + weights·EncodeFeatures(reading).
type LinearModel struct {
	intercept float64
	weights   []float64
	info      ModelInfo
}

// LoadLinear reads and validates a linear model artifact.
func LoadLinear(path string) (*LinearModel, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read model file: %w", err)).
			Component("predictor").
			Category(errors.CategoryModelLoad).
			ModelContext(path, conf.ModelTypeLinear).
			Timing("model-load", time.Since(start)).
			Build()
	}

	var artifact LinearArtifact
	if err := yaml.Unmarshal(data, &artifact); err != nil {
		return nil, errors.New(fmt.Errorf("failed to parse model file: %w", err)).
			Component("predictor").
			Category(errors.CategoryModelLoad).
			FileContext(path, int64(len(data))).
			Build()
	}

	m, err := NewLinearModel(&artifact, path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewLinearModel builds a model from a decoded artifact, checking that it
// declares the feature schema and weights every level of every enumeration.
func NewLinearModel(a *LinearArtifact, path string) (*LinearModel, error) {
	if err := checkSchema(a.Features, path, conf.ModelTypeLinear); err != nil {
		return nil, err
	}

	if !sameKeys(a.Coefficients, numericFeatures) {
		return nil, schemaError(path, conf.ModelTypeLinear,
			"coefficients must cover exactly %v, got %v", numericFeatures, slices.Sorted(maps.Keys(a.Coefficients)))
	}

	weights := make([]float64, 0, EncodedWidth)
	for _, name := range numericFeatures {
		weights = append(weights, a.Coefficients[name])
	}

	if len(a.Categorical) != len(categoricalLevels) {
		return nil, schemaError(path, conf.ModelTypeLinear,
			"categorical weights must cover exactly 3 features, got %d", len(a.Categorical))
	}
	for _, c := range categoricalLevels {
		levelWeights, ok := a.Categorical[c.feature]
		if !ok {
			return nil, schemaError(path, conf.ModelTypeLinear, "no categorical weights for %s", c.feature)
		}
		if !sameKeys(levelWeights, c.levels) {
			return nil, schemaError(path, conf.ModelTypeLinear,
				"%s levels must be %v, got %v", c.feature, c.levels, slices.Sorted(maps.Keys(levelWeights)))
		}
		for _, level := range c.levels {
			weights = append(weights, levelWeights[level])
		}
	}

	version := a.Version
	if version == "" {
		version = "unversioned"
	}

	return &LinearModel{
		intercept: a.Intercept,
		weights:   weights,
		info: ModelInfo{
			Type:     conf.ModelTypeLinear,
			Path:     path,
			Version:  version,
			Features: slices.Clone(a.Features),
			LoadedAt: time.Now(),
		},
	}, nil
}

// Predict implements Predictor.
func (m *LinearModel) Predict(ctx context.Context, r coldchain.Reading) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	x, err := EncodeFeatures(&r)
	if err != nil {
		return 0, err
	}

	return RoundTemp(m.intercept + floats.Dot(m.weights, x)), nil
}

// Info implements Predictor.
func (m *LinearModel) Info() ModelInfo {
	return m.info
}

// Close implements Predictor. A linear model holds no resources.
func (m *LinearModel) Close() error {
	return nil
}

func sameKeys[V any](m map[string]V, keys []string) bool {
	if len(m) != len(keys) {
		return false
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
