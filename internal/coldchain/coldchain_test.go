package coldchain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldchain-go/coldchain/internal/errors"
)

func TestEvaluateMatchesRangeRule(t *testing.T) {
	t.Parallel()

	temps := []float64{-30, -22.01, -22, -20, -18, -17.99, 0, 1.99, 2, 3, 4, 4.01, 5, 6, 7, 8.5, 10, 10.01, 25}
	for _, p := range Products {
		r, err := SafeRangeFor(p)
		require.NoError(t, err)
		for _, temp := range temps {
			v, err := Evaluate(p, temp)
			require.NoError(t, err)
			assert.Equal(t, temp < r.Min || temp > r.Max, v.Alert, "product %s temp %g", p, temp)
			assert.Equal(t, !r.Contains(temp), v.Alert)
			assert.Equal(t, r, v.Range)
		}
	}
}

func TestEvaluateMilkExamples(t *testing.T) {
	t.Parallel()

	v, err := Evaluate(ProductMilk, 1.5)
	require.NoError(t, err)
	assert.True(t, v.Alert)
	assert.Equal(t, "Yes", v.AlertFlag())
	assert.Equal(t, SafeRange{Min: 2, Max: 4}, v.Range)

	v, err = Evaluate(ProductMilk, 3.0)
	require.NoError(t, err)
	assert.False(t, v.Alert)
	assert.Equal(t, "No", v.AlertFlag())
}

func TestSafeRangeTable(t *testing.T) {
	t.Parallel()

	want := map[Product]SafeRange{
		ProductMilk:             {2, 4},
		ProductCurd:             {3, 5},
		ProductButter:           {5, 7},
		ProductCheese:           {7, 10},
		ProductIceCream:         {-22, -18},
		ProductFlavoredBeverage: {4, 6},
	}
	require.Len(t, Products, len(want), "every product needs a safe range")
	for p, r := range want {
		got, err := SafeRangeFor(p)
		require.NoError(t, err)
		assert.Equal(t, r, got, p)
	}
}

func TestEvaluateUnknownProduct(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(Product("yogurt"), 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	p, err := ParseProduct("  Ice-Cream ")
	require.NoError(t, err)
	assert.Equal(t, ProductIceCream, p)
	assert.Equal(t, "ICE-CREAM", p.DisplayName())

	pk, err := ParsePackaging("TETRAPACK")
	require.NoError(t, err)
	assert.Equal(t, PackagingTetrapack, pk)

	a, err := ParseAirflow("good")
	require.NoError(t, err)
	assert.Equal(t, AirflowGood, a)

	_, err = ParseProduct("yogurt")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "product_type")

	_, err = ParseAirflow("excellent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poor, moderate, good")
}

func TestDefaultReadingIsValid(t *testing.T) {
	t.Parallel()

	r := DefaultReading()
	require.NoError(t, r.Validate())
	assert.Equal(t, 30.0, r.ExternalTemp)
	assert.Equal(t, 5.0, r.CurrentRoomTemp)
	assert.Equal(t, 60.0, r.Humidity)
	assert.Equal(t, 10.0, r.VolumeKg)
	assert.Equal(t, 12.0, r.StorageTimeHr)
}

func TestReadingValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Reading)
		fields []string
	}{
		{"bounds are inclusive", func(r *Reading) {
			r.ExternalTemp = 45
			r.CurrentRoomTemp = -25
			r.Humidity = 30
			r.VolumeKg = 100
			r.StorageTimeHr = 1
		}, nil},
		{"external too hot", func(r *Reading) { r.ExternalTemp = 45.5 }, []string{"external_temp"}},
		{"room too cold", func(r *Reading) { r.CurrentRoomTemp = -26 }, []string{"current_room_temp"}},
		{"humidity nan", func(r *Reading) { r.Humidity = math.NaN() }, []string{"humidity"}},
		{"volume zero", func(r *Reading) { r.VolumeKg = 0 }, []string{"volume_kg"}},
		{"storage too long", func(r *Reading) { r.StorageTimeHr = 73 }, []string{"storage_time_hr"}},
		{"bad enums", func(r *Reading) {
			r.Product = "yogurt"
			r.Packaging = "paper"
			r.Airflow = "none"
		}, []string{"product_type", "packaging_type", "airflow_rating"}},
		{"bad email", func(r *Reading) { r.Email = "not-an-address" }, []string{"email"}},
		{"display name email", func(r *Reading) { r.Email = "Ops <ops@example.com>" }, []string{"email"}},
		{"valid email", func(r *Reading) { r.Email = " ops@example.com " }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := DefaultReading()
			tt.mutate(&r)
			err := r.Validate()

			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			for _, f := range tt.fields {
				assert.Contains(t, err.Error(), f+":")
			}
		})
	}
}

func TestValidateTrimsEmail(t *testing.T) {
	t.Parallel()

	r := DefaultReading()
	r.Email = "  ops@example.com\n"
	require.NoError(t, r.Validate())
	assert.Equal(t, "ops@example.com", r.Email)
}

func TestValidateEmailRequiresAddress(t *testing.T) {
	t.Parallel()

	for in, ok := range map[string]bool{
		"":                      false,
		"   ":                   false,
		"ops@example.com":       true,
		" ops@example.com ":     true,
		"Ops <ops@example.com>": false,
		"not-an-address":        false,
	} {
		r := Reading{Email: in}
		err := r.ValidateEmail()
		if ok {
			assert.NoError(t, err, in)
			continue
		}
		assert.True(t, IsValidationError(err), in)
	}
}
