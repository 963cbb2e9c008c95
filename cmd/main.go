// Package main provides the entry point for the go-solarmax daemon.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without zoneinfo

	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	Version = "dev" // Default version, can be overridden by build flags
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout)
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	rootCmd := newRootCmd(out)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. Without a subcommand the daemon is started.
func newRootCmd(out io.Writer) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "go-solarmax",
		Short: "Solarmax inverter monitoring daemon",
		Long: `go-solarmax polls a Solarmax inverter over its TCP protocol and publishes
the readings to MQTT (with Home Assistant auto-discovery), PVOutput.org and
a local HTTP API.

Configuration is read from config.yaml in the working directory or ./config,
or from the file given with --config. Every key can be overridden with a
SOLARMAX_ environment variable, e.g. SOLARMAX_INVERTER_HOST.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}

	rootCmd.SetOut(out)
	rootCmd.SetVersionTemplate("go-solarmax {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the monitoring daemon (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), configFile)
			},
		},
		&cobra.Command{
			Use:   "probe",
			Short: "Check that the inverter answers and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runProbe(cmd.Context(), configFile, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "read",
			Short: "Read all values from the inverter once and print them as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runRead(cmd.Context(), configFile, cmd.OutOrStdout())
			},
		},
	)

	return rootCmd
}

// loadConfig loads the configuration and configures the global logger from it.
func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	initLogger(cfg.LogLevel)
	return cfg, nil
}

// initLogger configures the global zerolog logger.
func initLogger(level string) {
	// Logs go to stderr so command output on stdout stays machine readable.
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	// Parse the log level
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', defaulting to 'info'\n", level)
		logLevel = zerolog.InfoLevel
	}

	// Configure global logger
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}
