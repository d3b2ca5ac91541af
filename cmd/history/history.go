package history

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coldchain-go/coldchain/internal/app"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
	hist "github.com/coldchain-go/coldchain/internal/history"
)

// Command creates the command that prints or exports the stored records.
func Command(settings *conf.Settings) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print all stored predictions, or export them with --xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.OpenStore(settings, nil)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			if xlsxPath != "" {
				return exportXLSX(xlsxPath, records)
			}
			return printTable(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the records to this .xlsx file instead of printing them")
	return cmd
}

func exportXLSX(path string, records []datastore.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("history").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	if err := hist.WriteXLSX(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// printTable writes the records in Columns order, one row per record.
func printTable(w io.Writer, records []datastore.Prediction) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, hist.EmptyMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, col := range hist.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for i := range records {
		for j, v := range hist.Row(&records[i]) {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func cell(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
