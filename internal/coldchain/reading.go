package coldchain

import (
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/coldchain-go/coldchain/internal/errors"
)

// TimestampLayout is the format of stored record timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Bounds is the closed interval a numeric form field accepts, with the
// value the form starts at.
type Bounds struct {
	Min     float64
	Max     float64
	Default float64
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Form bounds for the numeric reading fields.
var (
	ExternalTempBounds    = Bounds{Min: 20, Max: 45, Default: 30}
	CurrentRoomTempBounds = Bounds{Min: -25, Max: 25, Default: 5}
	HumidityBounds        = Bounds{Min: 30, Max: 90, Default: 60}
	VolumeKgBounds        = Bounds{Min: 1, Max: 100, Default: 10}
	StorageTimeHrBounds   = Bounds{Min: 1, Max: 72, Default: 12}
)

// Reading is one operator submission: the storage conditions of a batch of
// product and an optional address for alerts.
type Reading struct {
	Product         Product   `json:"product_type"`
	ExternalTemp    float64   `json:"external_temp"`
	CurrentRoomTemp float64   `json:"current_room_temp"`
	Humidity        float64   `json:"humidity"`
	VolumeKg        float64   `json:"volume_kg"`
	Packaging       Packaging `json:"packaging_type"`
	StorageTimeHr   float64   `json:"storage_time_hr"`
	Airflow         Airflow   `json:"airflow_rating"`
	Email           string    `json:"email,omitempty"`
}

// DefaultReading returns the reading the form is pre-filled with.
func DefaultReading() Reading {
	return Reading{
		Product:         ProductMilk,
		ExternalTemp:    ExternalTempBounds.Default,
		CurrentRoomTemp: CurrentRoomTempBounds.Default,
		Humidity:        HumidityBounds.Default,
		VolumeKg:        VolumeKgBounds.Default,
		Packaging:       PackagingPlastic,
		StorageTimeHr:   StorageTimeHrBounds.Default,
		Airflow:         AirflowModerate,
	}
}

// Validate checks every field against the form's bounds and enumerations.
// All failing fields are reported, joined into one error of FieldErrors.
// A non-empty Email is trimmed and must parse as a bare address.
func (r *Reading) Validate() error {
	var errs []error

	if !r.Product.Valid() {
		errs = append(errs, &FieldError{Field: "product_type", Reason: fmt.Sprintf("unknown product %q", r.Product)})
	}
	if !r.Packaging.Valid() {
		errs = append(errs, &FieldError{Field: "packaging_type", Reason: fmt.Sprintf("unknown packaging %q", r.Packaging)})
	}
	if !r.Airflow.Valid() {
		errs = append(errs, &FieldError{Field: "airflow_rating", Reason: fmt.Sprintf("unknown airflow rating %q", r.Airflow)})
	}

	numeric := []struct {
		field  string
		value  float64
		bounds Bounds
	}{
		{"external_temp", r.ExternalTemp, ExternalTempBounds},
		{"current_room_temp", r.CurrentRoomTemp, CurrentRoomTempBounds},
		{"humidity", r.Humidity, HumidityBounds},
		{"volume_kg", r.VolumeKg, VolumeKgBounds},
		{"storage_time_hr", r.StorageTimeHr, StorageTimeHrBounds},
	}
	for _, n := range numeric {
		if math.IsNaN(n.value) || !n.bounds.Contains(n.value) {
			errs = append(errs, &FieldError{
				Field:  n.field,
				Reason: fmt.Sprintf("%g is outside %g..%g", n.value, n.bounds.Min, n.bounds.Max),
			})
		}
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email != "" {
		if err := r.ValidateEmail(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateEmail trims Email and checks that it is a bare address. Unlike
// Validate it rejects an empty address.
func (r *Reading) ValidateEmail() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return &FieldError{Field: "email", Reason: "an address is required"}
	}
	addr, err := mail.ParseAddress(r.Email)
	switch {
	case err != nil:
		return &FieldError{Field: "email", Reason: "not a valid email address"}
	case addr.Name != "":
		return &FieldError{Field: "email", Reason: "enter the address only, without a display name"}
	}
	return nil
}
