package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/analyzer"
	"github.com/penwyp/go-dose-monitor/internal/config"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/store"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var (
	// Logging related
	debug     bool
	logFormat string

	// Config and data
	configPath string
	storePath  string
	timezone   string

	// Output related
	outputFormat string
	window       string

	// settings is the merged result of the config file and the flags,
	// filled before any command runs.
	settings *config.Config

	// now is replaced by tests
	now = func() time.Time { return util.GetTimeProvider().Now() }

	rootCmd = &cobra.Command{
		Use:   "go-dose-monitor [flags]",
		Short: "Medication intake tracking and timeline tool",
		Long: `go-dose-monitor records medication intakes for two tracked subjects and
derives statistics and a day-by-day timeline from them.

Without a subcommand it prints the statistics report of the selected window.

Examples:
  go-dose-monitor                               # Report of the last 7 days
  go-dose-monitor --window 30d --output summary # Digest of the last 30 days
  go-dose-monitor add AH 25                     # Record 25 mg for AH now
  go-dose-monitor add EI 2 --unit ml --at 09:30 # Record 2 ml for EI at 09:30 today
  go-dose-monitor timeline --days 3             # Print the last three days
  go-dose-monitor watch                         # Live timeline in the terminal
  go-dose-monitor serve --addr :3001            # HTTP API for other clients`,
		PersistentPreRunE: setup,
		RunE:              runStats,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath,
		"Config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "",
		"Intake store file (overrides store.path)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone setting (e.g., Europe/Berlin, UTC); overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format (text, json)")

	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "",
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().StringVarP(&window, "window", "w", "",
		"Statistics window (3d, 7d, 14d, 30d, 90d)")
}

// setup loads the config file, applies flag overrides and initializes the
// logger and the time provider.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cmd.Flags().Changed("config") {
		settings, err = config.Load(configPath)
	} else {
		settings, err = config.LoadOptional(configPath)
	}
	if err != nil {
		return err
	}

	if storePath != "" {
		settings.Store.Path = storePath
	}
	if timezone != "" {
		settings.Timezone = timezone
	}
	if logFormat != "" {
		settings.Log.Format = logFormat
	}
	if debug {
		settings.Log.Level = "debug"
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logFile := config.ExpandPath(settings.Log.File)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(settings.Log.Level, logFile, debug, util.LogFormat(settings.Log.Format)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return util.InitializeTimeProvider(settings.Timezone)
}

func runStats(cmd *cobra.Command, args []string) error {
	if outputFormat == "" {
		outputFormat = settings.Output
	}
	w := settings.StatsWindow()
	if window != "" {
		var err error
		if w, err = aggregator.ParseWindow(window); err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := analyzer.New(&analyzer.Config{
		OutputFormat: outputFormat,
		Window:       w,
		Timezone:     settings.Timezone,
	}, st, now)
	if err != nil {
		return err
	}
	return a.Report(cmd.Context(), cmd.OutOrStdout())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func openStore() (*store.FileStore, error) {
	return store.NewFileStore(config.ExpandPath(settings.Store.Path))
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// signalContext is cancelled on interrupt or termination
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
