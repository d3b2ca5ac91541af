package coldchain

import (
	"strings"

	"github.com/coldchain-go/coldchain/internal/errors"
)

// ErrUnknownProduct is returned when a product has no safe range.
var ErrUnknownProduct = errors.NewStd("unknown product type")

// SafeRange is the storage temperature band, in °C, a product should be kept in.
type SafeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether temp is inside the band. Both bounds are safe.
func (r SafeRange) Contains(temp float64) bool {
	return temp >= r.Min && temp <= r.Max
}

// safeRanges is never mutated after init.
var safeRanges = map[Product]SafeRange{
	ProductMilk:             {Min: 2, Max: 4},
	ProductCurd:             {Min: 3, Max: 5},
	ProductButter:           {Min: 5, Max: 7},
	ProductCheese:           {Min: 7, Max: 10},
	ProductIceCream:         {Min: -22, Max: -18},
	ProductFlavoredBeverage: {Min: 4, Max: 6},
}

// SafeRangeFor returns the safe range of a product.
func SafeRangeFor(p Product) (SafeRange, error) {
	r, ok := safeRanges[p]
	if !ok {
		return SafeRange{}, errors.New(ErrUnknownProduct).
			Component("coldchain").
			Category(errors.CategoryValidation).
			Context("product_type", string(p)).
			Build()
	}
	return r, nil
}

// Verdict is the outcome of checking a predicted temperature against the
// product's safe range.
type Verdict struct {
	Range SafeRange `json:"safe_range"`
	Alert bool      `json:"alert"`
}

// Evaluate flags a prediction that falls below the product's minimum or above
// its maximum.
func Evaluate(p Product, predictedTemp float64) (Verdict, error) {
	r, err := SafeRangeFor(p)
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{Range: r, Alert: predictedTemp < r.Min || predictedTemp > r.Max}, nil
}

// AlertFlag is the stored form of the verdict: "Yes" when out of range.
func (v Verdict) AlertFlag() string {
	return YesNo(v.Alert)
}

// YesNo renders a boolean the way the records table stores it.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// DisplayName is the product name as shown in alert subjects, e.g. "ICE-CREAM".
func (p Product) DisplayName() string {
	return strings.ToUpper(string(p))
}
