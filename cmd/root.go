package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coldchain-go/coldchain/cmd/history"
	"github.com/coldchain-go/coldchain/cmd/notify"
	"github.com/coldchain-go/coldchain/cmd/predict"
	"github.com/coldchain-go/coldchain/cmd/serve"
	"github.com/coldchain-go/coldchain/internal/buildinfo"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/logger"
)

// RootCommand creates and returns the root command. settings is filled in
// before any subcommand runs.
func RootCommand(settings *conf.Settings) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "coldchain",
		Short:         "Cold chain temperature advisor",
		Long:          "Predicts the ideal storage temperature for dairy products, records every prediction and alerts when it leaves the product's safe range.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildinfo.Current().String(),
	}

	if err := setupFlags(rootCmd, &configFile); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		predict.Command(settings),
		history.Command(settings),
		notify.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.LoadFile(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded
		return initLogging(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	rootCmd.PersistentFlags().StringVar(configFile, "config", "", "Path to config file (default: search the standard locations)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// initLogging replaces the bootstrap logger with one built from settings.
func initLogging(settings *conf.Settings) error {
	cfg := settings.Logging
	if settings.Debug {
		cfg.DefaultLevel = "debug"
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = "debug"
			cfg.Console = &console
		}
	}

	cl, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return err
	}
	logger.SetGlobal(cl)
	return nil
}
