package mqtt

import (
	"context"
	"encoding/json"

	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
)

// RecordDTO is the JSON payload published for each stored record. Field
// names match the predictions table columns.
type RecordDTO struct {
	ID              uint    `json:"id"`
	Timestamp       string  `json:"timestamp"`
	ProductType     string  `json:"product_type"`
	ExternalTemp    float64 `json:"external_temp"`
	CurrentRoomTemp float64 `json:"current_room_temp"`
	Humidity        float64 `json:"humidity"`
	VolumeKg        float64 `json:"volume_kg"`
	PackagingType   string  `json:"packaging_type"`
	StorageTimeHr   float64 `json:"storage_time_hr"`
	AirflowRating   string  `json:"airflow_rating"`
	PredictedTemp   float64 `json:"predicted_temp"`
	SafeMin         float64 `json:"safe_min"`
	SafeMax         float64 `json:"safe_max"`
	Alert           bool    `json:"alert"`
	Source          string  `json:"source,omitempty"`
}

// NewRecordDTO builds the payload for p. The recipient address is not published.
func NewRecordDTO(p *datastore.Prediction, safeMin, safeMax float64, source string) RecordDTO {
	return RecordDTO{
		ID:              p.ID,
		Timestamp:       p.Timestamp,
		ProductType:     p.ProductType,
		ExternalTemp:    p.ExternalTemp,
		CurrentRoomTemp: p.CurrentRoomTemp,
		Humidity:        p.Humidity,
		VolumeKg:        p.VolumeKg,
		PackagingType:   p.PackagingType,
		StorageTimeHr:   p.StorageTimeHr,
		AirflowRating:   p.AirflowRating,
		PredictedTemp:   p.PredictedTemp,
		SafeMin:         safeMin,
		SafeMax:         safeMax,
		Alert:           p.Alert(),
		Source:          source,
	}
}

// Publisher publishes stored records through a Client.
type Publisher struct {
	client Client
	source string
}

// NewPublisher wraps c. source identifies this instance in payloads.
func NewPublisher(c Client, source string) *Publisher {
	return &Publisher{client: c, source: source}
}

// PublishRecord publishes p with its safe range.
func (p *Publisher) PublishRecord(ctx context.Context, rec *datastore.Prediction, safeMin, safeMax float64) error {
	payload, err := json.Marshal(NewRecordDTO(rec, safeMin, safeMax, p.source))
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("operation", "marshal").
			Build()
	}
	return p.client.Publish(ctx, payload)
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	p.client.Disconnect()
}
