package predictor

import (
	"slices"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/errors"
)

// numericFeatures are the continuous inputs, in encoded vector order.
var numericFeatures = []string{
	"external_temp",
	"current_room_temp",
	"humidity",
	"volume_kg",
	"storage_time_hr",
}

// categoricalLevels lists the one-hot blocks, in encoded vector order.
var categoricalLevels = []struct {
	feature string
	levels  []string
}{
	{"product_type", enumStrings(coldchain.Products)},
	{"packaging_type", enumStrings(coldchain.Packagings)},
	{"airflow_rating", enumStrings(coldchain.Airflows)},
}

// EncodedWidth is the length of the vector EncodeFeatures produces.
var EncodedWidth = func() int {
	n := len(numericFeatures)
	for _, c := range categoricalLevels {
		n += len(c.levels)
	}
	return n
}()

// EncodeFeatures turns a reading into the canonical model input: the five
// numeric features followed by one-hot product, packaging and airflow blocks.
func EncodeFeatures(r *coldchain.Reading) ([]float64, error) {
	vec := make([]float64, 0, EncodedWidth)
	vec = append(vec, r.ExternalTemp, r.CurrentRoomTemp, r.Humidity, r.VolumeKg, r.StorageTimeHr)

	values := []string{string(r.Product), string(r.Packaging), string(r.Airflow)}
	for i, c := range categoricalLevels {
		idx := slices.Index(c.levels, values[i])
		if idx < 0 {
			return nil, errors.Newf("unknown %s level %q", c.feature, values[i]).
				Component("predictor").
				Category(errors.CategoryPrediction).
				Build()
		}
		block := make([]float64, len(c.levels))
		block[idx] = 1
		vec = append(vec, block...)
	}

	return vec, nil
}

// EncodedFeatureNames names each position of the encoded vector,
// e.g. "humidity" or "packaging_type=glass".
func EncodedFeatureNames() []string {
	names := slices.Clone(numericFeatures)
	for _, c := range categoricalLevels {
		for _, level := range c.levels {
			names = append(names, c.feature+"="+level)
		}
	}
	return names
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
