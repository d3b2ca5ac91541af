package history

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/coldchain-go/coldchain/internal/datastore"
	hist "github.com/coldchain-go/coldchain/internal/history"
)

func records() []datastore.Prediction {
	return []datastore.Prediction{
		{ID: 1, Timestamp: "2024-06-01 09:00:00", ProductType: "milk", PredictedTemp: 3, AlertSent: "No"},
		{ID: 2, Timestamp: "2024-06-01 09:05:00", ProductType: "cheese", PredictedTemp: 11.25, AlertSent: "Yes"},
	}
}

func TestPrintTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, records()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, hist.Columns, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "milk")
	assert.Contains(t, lines[2], "11.25")
	assert.True(t, strings.HasSuffix(lines[2], "Yes"))
}

func TestPrintTableEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, nil))
	assert.Equal(t, hist.EmptyMessage+"\n", buf.String())
}

func TestExportXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, exportXLSX(path, records()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportXLSXBadPath(t *testing.T) {
	t.Parallel()

	err := exportXLSX(filepath.Join(t.TempDir(), "missing", "out.xlsx"), records())
	require.Error(t, err)
}
