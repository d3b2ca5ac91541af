package history

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
)

const sheetName = "Predictions"

// Columns lists the export headers in table column order.
var Columns = []string{
	"id", "timestamp", "product_type", "external_temp", "current_room_temp",
	"humidity", "volume_kg", "packaging_type", "storage_time_hr",
	"airflow_rating", "predicted_temp", "email", "alert_sent",
}

var columnWidths = []float64{6, 20, 18, 13, 17, 10, 10, 15, 15, 14, 14, 28, 10}

// Row returns the values of r in Columns order.
func Row(r *datastore.Prediction) []any {
	return []any{
		r.ID, r.Timestamp, r.ProductType, r.ExternalTemp, r.CurrentRoomTemp,
		r.Humidity, r.VolumeKg, r.PackagingType, r.StorageTimeHr,
		r.AirflowRating, r.PredictedTemp, r.Email, r.AlertSent,
	}
}

// WriteXLSX writes every record as one sheet with a frozen header row.
func WriteXLSX(w io.Writer, records []datastore.Prediction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return exportError(err, "create_sheet")
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return exportError(err, "delete_default_sheet")
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return exportError(err, "create_header_style")
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return exportError(err, "write_header")
	}
	last, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return exportError(err, "header_range")
	}
	if err := f.SetCellStyle(sheetName, "A1", last+"1", headerStyle); err != nil {
		return exportError(err, "style_header")
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return exportError(err, "column_name")
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return exportError(err, "column_width")
		}
	}

	for i := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return exportError(err, "row_cell")
		}
		row := Row(&records[i])
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return exportError(err, "write_row")
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return exportError(err, "freeze_header")
	}

	if _, err := f.WriteTo(w); err != nil {
		return exportError(err, "write")
	}
	return nil
}

func exportError(err error, op string) error {
	return errors.New(err).
		Component("history").
		Category(errors.CategoryExport).
		Context("operation", op).
		Build()
}
