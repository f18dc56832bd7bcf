package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"flet-build/internal/config"
	"flet-build/internal/logger"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath is an optional YAML file layered over the built-in defaults.
var configPath string

// rootCmd is the base command for the CLI tool `flet-build`.
var rootCmd = &cobra.Command{
	Use:   "flet-build",
	Short: "Build the Flet desktop client and deploy Flet packages into Python environments",

	// Errors are printed once by Execute through the logger.
	SilenceErrors: true,
	SilenceUsage:  true,

	// PersistentPreRun is a hook that runs before any subcommand.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug) // Set up logging (verbose if --debug is true)
	},
}

// Execute registers the global flags, runs the selected subcommand and exits
// with status 1 if it fails. Ctrl-C cancels the context so child processes stop.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file (built-in defaults when empty)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config and logs where the settings came from.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if configPath == "" {
		logger.Debug("[DEBUG] No config file given, using built-in defaults\n")
	} else {
		logger.Debug("[DEBUG] Loaded config from %s\n", configPath)
	}
	return cfg, nil
}
