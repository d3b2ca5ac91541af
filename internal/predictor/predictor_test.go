package predictor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
)

const testArtifact = "testdata/ideal_temp.yaml"

// newTestArtifact returns a private copy of testdata/ideal_temp.yaml for mutation.
func newTestArtifact() *LinearArtifact {
	return &LinearArtifact{
		Version:      "test",
		Features:     append([]string(nil), FeatureSchema...),
		Intercept:    1.74,
		Coefficients: map[string]float64{"external_temp": -0.04, "current_room_temp": 0.08, "humidity": -0.01, "volume_kg": -0.01, "storage_time_hr": -0.02},
		Categorical: map[string]map[string]float64{
			"product_type":   {"milk": 3, "curd": 4, "butter": 6, "cheese": 8.5, "ice-cream": -20, "flavored_beverage": 5},
			"packaging_type": {"plastic": 0, "glass": -0.1, "tetrapack": 0.05, "metal": -0.2},
			"airflow_rating": {"poor": -0.3, "moderate": 0, "good": 0.2},
		},
	}
}

func TestRoundTemp(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 3.14, RoundTemp(3.14159), 1e-9)
	assert.InDelta(t, -20.01, RoundTemp(-20.005001), 1e-9)
	assert.InDelta(t, 2.0, RoundTemp(1.999), 1e-9)

	// exact halves go to the even neighbour
	assert.InDelta(t, 2.62, RoundTemp(2.625), 1e-9)
	assert.InDelta(t, 2.38, RoundTemp(2.375), 1e-9)
	assert.InDelta(t, -0.12, RoundTemp(-0.125), 1e-9)
}

func TestEncodeFeatures(t *testing.T) {
	t.Parallel()

	r := coldchain.DefaultReading()
	r.Product = coldchain.ProductCheese
	r.Packaging = coldchain.PackagingMetal
	r.Airflow = coldchain.AirflowGood

	x, err := EncodeFeatures(&r)
	require.NoError(t, err)
	require.Len(t, x, EncodedWidth)
	assert.Equal(t, 18, EncodedWidth)

	names := EncodedFeatureNames()
	require.Len(t, names, EncodedWidth)

	hot := map[string]float64{}
	for i, name := range names {
		hot[name] = x[i]
	}
	assert.Equal(t, 30.0, hot["external_temp"])
	assert.Equal(t, 12.0, hot["storage_time_hr"])
	assert.Equal(t, 1.0, hot["product_type=cheese"])
	assert.Equal(t, 0.0, hot["product_type=milk"])
	assert.Equal(t, 1.0, hot["packaging_type=metal"])
	assert.Equal(t, 1.0, hot["airflow_rating=good"])

	r.Airflow = "stale"
	_, err = EncodeFeatures(&r)
	require.Error(t, err)
}

func TestLinearPredict(t *testing.T) {
	t.Parallel()

	m, err := LoadLinear(testArtifact)
	require.NoError(t, err)

	tests := []struct {
		name string
		r    coldchain.Reading
		want float64
	}{
		{"defaults", coldchain.DefaultReading(), 3.0},
		{"ice cream in a hot room", coldchain.Reading{
			Product: coldchain.ProductIceCream, ExternalTemp: 40, CurrentRoomTemp: -20, Humidity: 50,
			VolumeKg: 20, Packaging: coldchain.PackagingMetal, StorageTimeHr: 24, Airflow: coldchain.AirflowPoor,
		}, -23.14},
		{"cheese at the bounds", coldchain.Reading{
			Product: coldchain.ProductCheese, ExternalTemp: 45, CurrentRoomTemp: 25, Humidity: 90,
			VolumeKg: 100, Packaging: coldchain.PackagingGlass, StorageTimeHr: 72, Airflow: coldchain.AirflowGood,
		}, 7.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Predict(context.Background(), tt.r)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	info := m.Info()
	assert.Equal(t, conf.ModelTypeLinear, info.Type)
	assert.Equal(t, "2024.06-ridge", info.Version)
	assert.Equal(t, FeatureSchema, info.Features)
}

func TestLinearPredictHonoursContext(t *testing.T) {
	t.Parallel()

	m, err := LoadLinear(testArtifact)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Predict(ctx, coldchain.DefaultReading())
	require.ErrorIs(t, err, context.Canceled)
}

func TestLinearSchemaMismatch(t *testing.T) {
	t.Parallel()

	_, err := NewLinearModel(newTestArtifact(), "memory.yaml")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*LinearArtifact)
	}{
		{"feature order", func(a *LinearArtifact) { a.Features[0], a.Features[1] = a.Features[1], a.Features[0] }},
		{"missing feature", func(a *LinearArtifact) { a.Features = a.Features[:7] }},
		{"extra coefficient", func(a *LinearArtifact) { a.Coefficients["dew_point"] = 0.1 }},
		{"missing coefficient", func(a *LinearArtifact) { delete(a.Coefficients, "humidity") }},
		{"missing product level", func(a *LinearArtifact) { delete(a.Categorical["product_type"], "butter") }},
		{"unknown packaging level", func(a *LinearArtifact) { a.Categorical["packaging_type"]["paper"] = 0.3 }},
		{"missing categorical block", func(a *LinearArtifact) { delete(a.Categorical, "airflow_rating") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := newTestArtifact()
			tt.mutate(a)
			_, err := NewLinearModel(a, "memory.yaml")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
			assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
		})
	}
}

func TestLoadLinearFromJSON(t *testing.T) {
	t.Parallel()

	_, err := LoadLinear("testdata/wrong_order.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadLinearErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadLinear(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))

	garbage := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("features: [unterminated"), 0o600))
	_, err = LoadLinear(garbage)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

func TestLoadSelectsBackend(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{Model: conf.ModelSettings{Type: conf.ModelTypeLinear, Path: testArtifact}}
	p, err := Load(settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	assert.IsType(t, &LinearModel{}, p)

	settings.Model.Type = "onnx"
	_, err = Load(settings)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestLoadTFLiteRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := LoadTFLite(filepath.Join(t.TempDir(), "missing.tflite"), 1)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

// TestTFLiteModel runs against a real model when COLDCHAIN_TEST_TFLITE_MODEL
// points at one whose input is the encoded reading.
func TestTFLiteModel(t *testing.T) {
	path := os.Getenv("COLDCHAIN_TEST_TFLITE_MODEL")
	if path == "" {
		t.Skip("COLDCHAIN_TEST_TFLITE_MODEL not set")
	}

	m, err := LoadTFLite(path, 1)
	require.NoError(t, err)
	defer m.Close()

	got, err := m.Predict(context.Background(), coldchain.DefaultReading())
	require.NoError(t, err)
	assert.Equal(t, RoundTemp(got), got)

	require.NoError(t, m.Close())
	_, err = m.Predict(context.Background(), coldchain.DefaultReading())
	require.Error(t, err)
}
