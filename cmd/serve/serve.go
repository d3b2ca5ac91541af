package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coldchain-go/coldchain/internal/app"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/httpcontroller"
)

// Command creates the command that runs the web form.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the advisor web page",
		Long:  "Start the web server with the reading form, the prediction history chart and the records export.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("host", "", "Listen address, empty for all interfaces")
	cmd.Flags().String("port", "8501", "Listen port")
	cmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics")

	for key, flag := range map[string]string{
		"webserver.host":  "host",
		"webserver.port":  "port",
		"metrics.enabled": "metrics",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flags: %w", err)
		}
	}
	return nil
}

func run(cmd *cobra.Command, settings *conf.Settings) error {
	if !settings.WebServer.Enabled {
		return errors.Newf("web server is disabled in the configuration").
			Component("serve").
			Category(errors.CategoryConfiguration).
			Build()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, settings)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []httpcontroller.Option
	if settings.Metrics.Enabled {
		opts = append(opts, httpcontroller.WithMetricsHandler(a.Metrics.Handler()))
	}

	srv := httpcontroller.New(settings, a.Advisor, a.Store, opts...)
	return srv.Start(ctx)
}
