package httpcontroller

import (
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/errors"
)

// Form field names. They match the record column names.
const (
	fieldProduct         = "product_type"
	fieldExternalTemp    = "external_temp"
	fieldCurrentRoomTemp = "current_room_temp"
	fieldHumidity        = "humidity"
	fieldVolumeKg        = "volume_kg"
	fieldPackaging       = "packaging_type"
	fieldStorageTimeHr   = "storage_time_hr"
	fieldAirflow         = "airflow_rating"
	fieldEmail           = "email"
)

// bindReading reads a submitted form. Fields that fail to parse keep their
// default value so the form can be re-rendered, and are reported together
// as FieldErrors.
func bindReading(c echo.Context) (coldchain.Reading, error) {
	r := coldchain.DefaultReading()
	var errs []error

	if p, err := coldchain.ParseProduct(c.FormValue(fieldProduct)); err != nil {
		errs = append(errs, err)
	} else {
		r.Product = p
	}
	if p, err := coldchain.ParsePackaging(c.FormValue(fieldPackaging)); err != nil {
		errs = append(errs, err)
	} else {
		r.Packaging = p
	}
	if a, err := coldchain.ParseAirflow(c.FormValue(fieldAirflow)); err != nil {
		errs = append(errs, err)
	} else {
		r.Airflow = a
	}

	numeric := []struct {
		field string
		dst   *float64
	}{
		{fieldExternalTemp, &r.ExternalTemp},
		{fieldCurrentRoomTemp, &r.CurrentRoomTemp},
		{fieldHumidity, &r.Humidity},
		{fieldVolumeKg, &r.VolumeKg},
		{fieldStorageTimeHr, &r.StorageTimeHr},
	}
	for _, n := range numeric {
		v, err := parseNumber(n.field, c.FormValue(n.field))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*n.dst = v
	}

	r.Email = strings.TrimSpace(c.FormValue(fieldEmail))
	return r, errors.Join(errs...)
}

func parseNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &coldchain.FieldError{Field: field, Reason: "a value is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &coldchain.FieldError{Field: field, Reason: strconv.Quote(raw) + " is not a number"}
	}
	return v, nil
}

// fieldMessages flattens a validation error into one message per field.
func fieldMessages(err error) []string {
	var msgs []string
	collectFieldErrors(err, &msgs)
	if len(msgs) == 0 && err != nil {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func collectFieldErrors(err error, msgs *[]string) {
	switch e := err.(type) {
	case nil:
	case *coldchain.FieldError:
		*msgs = append(*msgs, e.Error())
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectFieldErrors(inner, msgs)
		}
	case interface{ Unwrap() error }:
		collectFieldErrors(e.Unwrap(), msgs)
	}
}
