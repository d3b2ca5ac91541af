// Package history renders the stored predictions as a trend chart and a
// spreadsheet export.
package history

import (
	"bytes"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
)

const (
	ChartTitle   = "Historical Ideal Temperature Predictions"
	XAxisName    = "Timestamp"
	YAxisName    = "Temperature (°C)"
	EmptyMessage = "No data to display yet."

	// ChartID is the DOM id of the chart container.
	ChartID = "history-chart"
)

// EChartsAssetURL is the script the page must load before the chart snippet.
const EChartsAssetURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// Point is one prediction on the chart.
type Point struct {
	Timestamp string
	Temp      float64
}

// Series holds the points of one product in insertion order.
type Series struct {
	Product string
	Points  []Point
}

// Chart is the rendered history. When Empty is set HTML is blank and the
// page shows EmptyMessage instead.
type Chart struct {
	Empty  bool
	Series []Series
	HTML   template.HTML
}

// GroupByProduct splits records into one series per product type. Series
// appear in the order their product was first seen.
func GroupByProduct(records []datastore.Prediction) []Series {
	index := make(map[string]int)
	var out []Series
	for i := range records {
		r := &records[i]
		idx, ok := index[r.ProductType]
		if !ok {
			idx = len(out)
			index[r.ProductType] = idx
			out = append(out, Series{Product: r.ProductType})
		}
		out[idx].Points = append(out[idx].Points, Point{Timestamp: r.Timestamp, Temp: r.PredictedTemp})
	}
	return out
}

// BuildChart draws predicted temperature over time, one line per product.
func BuildChart(records []datastore.Prediction) (*Chart, error) {
	if len(records) == 0 {
		return &Chart{Empty: true}, nil
	}

	series := GroupByProduct(records)
	line := newLineChart()
	for _, s := range series {
		data := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.LineData{Value: []any{p.Timestamp, p.Temp}})
		}
		line.AddSeries(s.Product, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	}

	html, err := renderSnippet(line)
	if err != nil {
		return nil, err
	}
	return &Chart{Series: series, HTML: html}, nil
}

func newLineChart() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: ChartID,
			Width:   "100%",
			Height:  "400px",
		}),
		charts.WithTitleOpts(opts.Title{Title: ChartTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
			Name: XAxisName,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: YAxisName,
		}),
		charts.WithGridOpts(opts.Grid{
			ContainLabel: opts.Bool(true),
			Left:         "3%",
			Right:        "8%",
			Bottom:       "10%",
		}),
	)
	return line
}

var snippetTmpl = template.Must(template.New("snippet").Parse(`{{.Element}} {{.Script}}`))

func renderSnippet(line *charts.Line) (template.HTML, error) {
	snippet := line.RenderSnippet()
	data := struct {
		Element template.HTML
		Script  template.HTML
	}{
		Element: template.HTML(snippet.Element), //nolint:gosec // generated by go-echarts
		Script:  template.HTML(snippet.Script),  //nolint:gosec // generated by go-echarts
	}

	var buf bytes.Buffer
	if err := snippetTmpl.Execute(&buf, data); err != nil {
		return "", errors.New(err).
			Component("history").
			Category(errors.CategoryGeneric).
			Context("operation", "render_chart").
			Build()
	}
	return template.HTML(buf.String()), nil //nolint:gosec // composed of trusted snippet parts
}
