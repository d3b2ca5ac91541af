package history

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/coldchain-go/coldchain/internal/datastore"
)

func testRecords() []datastore.Prediction {
	return []datastore.Prediction{
		{ID: 1, Timestamp: "2024-06-01 09:00:00", ProductType: "milk", PredictedTemp: 3.0, AlertSent: "No", PackagingType: "plastic", AirflowRating: "moderate"},
		{ID: 2, Timestamp: "2024-06-01 09:05:00", ProductType: "cheese", PredictedTemp: 11.2, AlertSent: "Yes", Email: "ops@example.com"},
		{ID: 3, Timestamp: "2024-06-01 09:10:00", ProductType: "milk", PredictedTemp: 1.5, AlertSent: "Yes"},
		{ID: 4, Timestamp: "2024-06-01 09:15:00", ProductType: "ice-cream", PredictedTemp: -20, AlertSent: "No"},
	}
}

func TestGroupByProductKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	series := GroupByProduct(testRecords())
	require.Len(t, series, 3)

	assert.Equal(t, "milk", series[0].Product)
	assert.Equal(t, "cheese", series[1].Product)
	assert.Equal(t, "ice-cream", series[2].Product)

	assert.Equal(t, []Point{
		{Timestamp: "2024-06-01 09:00:00", Temp: 3.0},
		{Timestamp: "2024-06-01 09:10:00", Temp: 1.5},
	}, series[0].Points)
}

func TestBuildChartEmptyStore(t *testing.T) {
	t.Parallel()

	chart, err := BuildChart(nil)
	require.NoError(t, err)
	assert.True(t, chart.Empty)
	assert.Empty(t, chart.HTML)
	assert.Empty(t, chart.Series)
}

func TestBuildChartRendersSeries(t *testing.T) {
	t.Parallel()

	chart, err := BuildChart(testRecords())
	require.NoError(t, err)
	require.False(t, chart.Empty)

	html := string(chart.HTML)
	assert.Contains(t, html, ChartID)
	assert.Contains(t, html, ChartTitle)
	assert.Contains(t, html, XAxisName)
	assert.Contains(t, html, YAxisName)
	assert.Contains(t, html, `"time"`)
	assert.Contains(t, html, `"showSymbol":true`)
	assert.Contains(t, html, "2024-06-01 09:10:00")

	// Legend entries follow first-seen order.
	milk := strings.Index(html, `"name":"milk"`)
	cheese := strings.Index(html, `"name":"cheese"`)
	iceCream := strings.Index(html, `"name":"ice-cream"`)
	require.NotEqual(t, -1, milk)
	assert.Less(t, milk, cheese)
	assert.Less(t, cheese, iceCream)
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2024-06-01 09:00:00", rows[1][1])
	assert.Equal(t, "milk", rows[1][2])
	assert.Equal(t, "ops@example.com", rows[2][11])
	assert.Equal(t, "Yes", rows[2][12])
}

func TestWriteXLSXEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Columns, rows[0])
}
