package predict

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coldchain-go/coldchain/internal/advisor"
	"github.com/coldchain-go/coldchain/internal/app"
	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
)

// options holds the raw flag values; enums are parsed when the command runs.
type options struct {
	product   string
	packaging string
	airflow   string
	reading   coldchain.Reading
	json      bool
}

// Command creates the command that runs one submission from the command line.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{reading: coldchain.DefaultReading()}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict and record the ideal temperature for one reading",
		Long: `Run one reading through the same path as the web form: predict, store,
and send the alert email when an address is given and the prediction is out of range.

Example:
  coldchain predict --product milk --external-temp 35 --humidity 70 --email ops@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, settings, opts)
		},
	}

	setupFlags(cmd, opts)
	return cmd
}

// setupFlags configures flags specific to the predict command. Defaults are
// the form's starting values.
func setupFlags(cmd *cobra.Command, o *options) {
	r := &o.reading
	cmd.Flags().StringVar(&o.product, "product", r.Product.String(), "Product type: "+joinValues(coldchain.Products))
	cmd.Flags().StringVar(&o.packaging, "packaging", r.Packaging.String(), "Packaging type: "+joinValues(coldchain.Packagings))
	cmd.Flags().StringVar(&o.airflow, "airflow", r.Airflow.String(), "Airflow rating: "+joinValues(coldchain.Airflows))
	cmd.Flags().Float64Var(&r.ExternalTemp, "external-temp", r.ExternalTemp, boundsHelp("External temperature (°C)", coldchain.ExternalTempBounds))
	cmd.Flags().Float64Var(&r.CurrentRoomTemp, "room-temp", r.CurrentRoomTemp, boundsHelp("Current room temperature (°C)", coldchain.CurrentRoomTempBounds))
	cmd.Flags().Float64Var(&r.Humidity, "humidity", r.Humidity, boundsHelp("Humidity (%)", coldchain.HumidityBounds))
	cmd.Flags().Float64Var(&r.VolumeKg, "volume", r.VolumeKg, boundsHelp("Volume (kg)", coldchain.VolumeKgBounds))
	cmd.Flags().Float64Var(&r.StorageTimeHr, "storage-time", r.StorageTimeHr, boundsHelp("Storage duration (hr)", coldchain.StorageTimeHrBounds))
	cmd.Flags().StringVar(&r.Email, "email", "", "Email address for the alert (optional)")
	cmd.Flags().BoolVar(&o.json, "json", false, "Print the stored record as JSON")
}

func run(cmd *cobra.Command, settings *conf.Settings, o *options) error {
	r, err := o.parse()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Advisor.Submit(cmd.Context(), advisor.Submission{Reading: r})
	if err != nil {
		return err
	}
	if o.json {
		return printJSON(cmd.OutOrStdout(), out)
	}
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

// parse applies the enum flags to the reading.
func (o *options) parse() (coldchain.Reading, error) {
	r := o.reading
	var errs []error
	var err error
	if r.Product, err = coldchain.ParseProduct(o.product); err != nil {
		errs = append(errs, err)
	}
	if r.Packaging, err = coldchain.ParsePackaging(o.packaging); err != nil {
		errs = append(errs, err)
	}
	if r.Airflow, err = coldchain.ParseAirflow(o.airflow); err != nil {
		errs = append(errs, err)
	}
	return r, errors.Join(errs...)
}

func printOutcome(w io.Writer, out *advisor.Outcome) {
	rec := out.Record
	fmt.Fprintf(w, "✅ Ideal Room Temperature: %s °C\n", formatTemp(rec.PredictedTemp))
	fmt.Fprintf(w, "Safe range for %s: %s °C to %s °C\n",
		rec.ProductType, formatTemp(out.Verdict.Range.Min), formatTemp(out.Verdict.Range.Max))
	if out.Verdict.Alert {
		fmt.Fprintln(w, "⚠️  Prediction is out of range")
	}
	if out.EmailSent {
		fmt.Fprintln(w, "🚨 Email alert sent successfully!")
	}
	for _, warning := range out.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	fmt.Fprintf(w, "Record #%d stored at %s\n", rec.ID, rec.Timestamp)
}

func printJSON(w io.Writer, out *advisor.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Record    any      `json:"record"`
		SafeMin   float64  `json:"safe_min"`
		SafeMax   float64  `json:"safe_max"`
		Alert     bool     `json:"alert"`
		EmailSent bool     `json:"email_sent"`
		Warnings  []string `json:"warnings,omitempty"`
	}{out.Record, out.Verdict.Range.Min, out.Verdict.Range.Max, out.Verdict.Alert, out.EmailSent, out.Warnings})
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boundsHelp(label string, b coldchain.Bounds) string {
	return fmt.Sprintf("%s, %s to %s", label, formatTemp(b.Min), formatTemp(b.Max))
}

func joinValues[T fmt.Stringer](values []T) string {
	s := ""
	for i, v := range values {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s
}
