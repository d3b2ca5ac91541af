package datastore

import (
	"time"

	"github.com/coldchain-go/coldchain/internal/coldchain"
)

// Prediction is one stored submission: the reading, the model's output and
// the verdict flag. Rows are written once and never updated.
type Prediction struct {
	ID              uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Timestamp       string  `gorm:"column:timestamp;size:19;not null" json:"timestamp"` // local time, coldchain.TimestampLayout
	ProductType     string  `gorm:"column:product_type;size:32;not null" json:"product_type"`
	ExternalTemp    float64 `gorm:"column:external_temp" json:"external_temp"`
	CurrentRoomTemp float64 `gorm:"column:current_room_temp" json:"current_room_temp"`
	Humidity        float64 `gorm:"column:humidity" json:"humidity"`
	VolumeKg        float64 `gorm:"column:volume_kg" json:"volume_kg"`
	PackagingType   string  `gorm:"column:packaging_type;size:16" json:"packaging_type"`
	StorageTimeHr   float64 `gorm:"column:storage_time_hr" json:"storage_time_hr"`
	AirflowRating   string  `gorm:"column:airflow_rating;size:16" json:"airflow_rating"`
	PredictedTemp   float64 `gorm:"column:predicted_temp" json:"predicted_temp"`
	Email           string  `gorm:"column:email;size:254" json:"email"`
	AlertSent       string  `gorm:"column:alert_sent;size:3" json:"alert_sent"` // "Yes" or "No"
}

// TableName pins the table name regardless of naming strategy.
func (Prediction) TableName() string {
	return "predictions"
}

// NewPrediction builds the record for a reading, its prediction and verdict,
// stamped with at in at's own location.
func NewPrediction(r *coldchain.Reading, predicted float64, v coldchain.Verdict, at time.Time) *Prediction {
	return &Prediction{
		Timestamp:       at.Format(coldchain.TimestampLayout),
		ProductType:     r.Product.String(),
		ExternalTemp:    r.ExternalTemp,
		CurrentRoomTemp: r.CurrentRoomTemp,
		Humidity:        r.Humidity,
		VolumeKg:        r.VolumeKg,
		PackagingType:   r.Packaging.String(),
		StorageTimeHr:   r.StorageTimeHr,
		AirflowRating:   r.Airflow.String(),
		PredictedTemp:   predicted,
		Email:           r.Email,
		AlertSent:       v.AlertFlag(),
	}
}

// Time parses the stored timestamp in loc. A nil loc means time.Local.
func (p *Prediction) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(coldchain.TimestampLayout, p.Timestamp, loc)
}

// Alert reports whether the record was flagged out of range.
func (p *Prediction) Alert() bool {
	return p.AlertSent == coldchain.YesNo(true)
}
