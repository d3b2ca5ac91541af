package predict

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldchain-go/coldchain/internal/advisor"
	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/datastore"
)

func TestFlagsDefaultToForm(t *testing.T) {
	t.Parallel()

	cmd := Command(&conf.Settings{})
	require.NoError(t, cmd.ParseFlags([]string{"--product", "Cheese", "--humidity", "75", "--email", "ops@example.com"}))

	product, err := cmd.Flags().GetString("product")
	require.NoError(t, err)
	assert.Equal(t, "Cheese", product)

	humidity, err := cmd.Flags().GetFloat64("humidity")
	require.NoError(t, err)
	assert.InDelta(t, 75, humidity, 0)

	ext, err := cmd.Flags().GetFloat64("external-temp")
	require.NoError(t, err)
	assert.InDelta(t, coldchain.ExternalTempBounds.Default, ext, 0)
}

func optionsFrom(t *testing.T, product string) *options {
	t.Helper()
	return &options{reading: coldchain.DefaultReading(), product: product, packaging: "glass", airflow: "good"}
}

func TestOptionsParse(t *testing.T) {
	t.Parallel()

	r, err := optionsFrom(t, "Cheese").parse()
	require.NoError(t, err)
	assert.Equal(t, coldchain.ProductCheese, r.Product)
	assert.Equal(t, coldchain.PackagingGlass, r.Packaging)
	assert.Equal(t, coldchain.AirflowGood, r.Airflow)

	o := optionsFrom(t, "yogurt")
	o.airflow = "strong"
	_, err = o.parse()
	require.Error(t, err)
	assert.True(t, coldchain.IsValidationError(err))
	assert.Contains(t, err.Error(), "product_type")
	assert.Contains(t, err.Error(), "airflow_rating")
}

func outcome(alert, sent bool, warnings ...string) *advisor.Outcome {
	return &advisor.Outcome{
		Record: &datastore.Prediction{
			ID: 3, Timestamp: "2024-06-01 09:00:00", ProductType: "milk", PredictedTemp: 1.5,
		},
		Verdict:   coldchain.Verdict{Range: coldchain.SafeRange{Min: 2, Max: 4}, Alert: alert},
		EmailSent: sent,
		Warnings:  warnings,
	}
}

func TestPrintOutcome(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printOutcome(&buf, outcome(true, true))
	out := buf.String()
	assert.Contains(t, out, "✅ Ideal Room Temperature: 1.5 °C")
	assert.Contains(t, out, "Safe range for milk: 2 °C to 4 °C")
	assert.Contains(t, out, "out of range")
	assert.Contains(t, out, "🚨 Email alert sent successfully!")
	assert.Contains(t, out, "Record #3 stored at 2024-06-01 09:00:00")

	buf.Reset()
	printOutcome(&buf, outcome(false, false, "email alerts are not configured"))
	out = buf.String()
	assert.NotContains(t, out, "out of range")
	assert.NotContains(t, out, "Email alert sent")
	assert.Contains(t, out, "Warning: email alerts are not configured")
}

func TestPrintJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, outcome(true, false)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, true, got["alert"])
	assert.Equal(t, false, got["email_sent"])
	assert.InDelta(t, 2, got["safe_min"], 0)
	record, ok := got["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "milk", record["product_type"])
	assert.NotContains(t, got, "warnings")
}
