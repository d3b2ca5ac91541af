package httpcontroller

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coldchain-go/coldchain/internal/advisor"
	"github.com/coldchain-go/coldchain/internal/buildinfo"
	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/history"
	"github.com/coldchain-go/coldchain/internal/logger"
)

const (
	pageTitle    = "Smart Cold Chain"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxFilename = "predictions.xlsx"
)

// Result is the outcome of the submission shown above the chart.
type Result struct {
	Product       coldchain.Product
	PredictedTemp float64
	SafeMin       float64
	SafeMax       float64
	Alert         bool
	EmailSent     bool
}

// PageData represents data for rendering the advisor page.
type PageData struct {
	Title     string
	Instance  string
	Form      coldchain.Reading
	Result    *Result
	Errors    []string
	Warnings  []string
	Chart     *history.Chart
	ChartJS   string
	NoData    string
	ShowTable bool
	Columns   []string
	Records   []datastore.Prediction

	Products   []coldchain.Product
	Packagings []coldchain.Packaging
	Airflows   []coldchain.Airflow

	ExternalTemp    coldchain.Bounds
	CurrentRoomTemp coldchain.Bounds
	Humidity        coldchain.Bounds
	VolumeKg        coldchain.Bounds
	StorageTimeHr   coldchain.Bounds
}

func (s *Server) newPageData(form coldchain.Reading) *PageData {
	return &PageData{
		Title:           pageTitle,
		Instance:        s.Settings.Main.Name,
		Form:            form,
		ChartJS:         history.EChartsAssetURL,
		NoData:          history.EmptyMessage,
		Columns:         history.Columns,
		Products:        coldchain.Products,
		Packagings:      coldchain.Packagings,
		Airflows:        coldchain.Airflows,
		ExternalTemp:    coldchain.ExternalTempBounds,
		CurrentRoomTemp: coldchain.CurrentRoomTempBounds,
		Humidity:        coldchain.HumidityBounds,
		VolumeKg:        coldchain.VolumeKgBounds,
		StorageTimeHr:   coldchain.StorageTimeHrBounds,
	}
}

// render loads the history and renders the page with status.
func (s *Server) render(c echo.Context, status int, data *PageData) error {
	ctx := c.Request().Context()
	records, err := s.records.ReadAll(ctx)
	if err != nil {
		return err
	}
	chart, err := history.BuildChart(records)
	if err != nil {
		return err
	}
	data.Chart = chart
	if data.ShowTable {
		data.Records = records
	}
	return c.Render(status, "index", data)
}

// handleIndex serves the empty form. ?records=1 adds the full table.
func (s *Server) handleIndex(c echo.Context) error {
	data := s.newPageData(coldchain.DefaultReading())
	data.ShowTable = showTable(c)
	return s.render(c, http.StatusOK, data)
}

// handlePredict runs a form submission and re-renders the page with its
// result. Invalid input gives 400 with the submitted form and nothing stored.
func (s *Server) handlePredict(c echo.Context) error {
	ctx := c.Request().Context()
	log := GetLogger().WithContext(ctx)

	form, err := bindReading(c)
	data := s.newPageData(form)
	data.ShowTable = showTable(c)
	if err != nil {
		data.Errors = fieldMessages(err)
		return s.render(c, http.StatusBadRequest, data)
	}

	out, err := s.advisor.Submit(ctx, advisor.Submission{Reading: form})
	if err != nil {
		if coldchain.IsValidationError(err) {
			data.Errors = fieldMessages(err)
			return s.render(c, http.StatusBadRequest, data)
		}
		return err
	}

	data.Result = &Result{
		Product:       form.Product,
		PredictedTemp: out.Record.PredictedTemp,
		SafeMin:       out.Verdict.Range.Min,
		SafeMax:       out.Verdict.Range.Max,
		Alert:         out.Verdict.Alert,
		EmailSent:     out.EmailSent,
	}
	data.Warnings = out.Warnings
	if len(out.Warnings) > 0 {
		log.Warn("submission completed with warnings",
			logger.Int64("id", int64(out.Record.ID)),
			logger.Int("warnings", len(out.Warnings)))
	}
	return s.render(c, http.StatusOK, data)
}

// handleRecordsXLSX streams the full table as a spreadsheet.
func (s *Server) handleRecordsXLSX(c echo.Context) error {
	records, err := s.records.ReadAll(c.Request().Context())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := history.WriteXLSX(&buf, records); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+xlsxFilename+`"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// handleHealthz reports liveness and the running version.
func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Current().GetVersion(),
	})
}

func showTable(c echo.Context) bool {
	v := c.QueryParam("records")
	if v == "" {
		v = c.FormValue("records")
	}
	return v == "1" || v == "on" || v == "true"
}
