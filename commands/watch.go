package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
	"github.com/penwyp/go-dose-monitor/internal/presentation/display"
	"github.com/penwyp/go-dose-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-dose-monitor/internal/presentation/layout"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var (
	// Display related flags
	watchTimeFormat  string
	watchDays        int
	watchRows        int
	watchRefreshRate int
	watchNoColor     bool
	watchWindow      string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live timeline and statistics in the terminal",
	Long: `Similar to the top command, keeps the timeline and statistics on screen and
redraws them whenever the store changes. The "now" line and the open gap
labels move with the clock.

Keys: q quit · r recompute · p pause · w next window · t layout · h help`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchTimeFormat, "time-format", "",
		"Time format (12h or 24h)")
	watchCmd.Flags().IntVar(&watchDays, "days", 1,
		"Number of days shown on the timeline")
	watchCmd.Flags().IntVar(&watchRows, "rows", layout.DefaultRowsPerDay,
		"Rows per day")
	watchCmd.Flags().IntVar(&watchRefreshRate, "refresh-rate", 0,
		"Clock refresh rate in seconds (0 = config value)")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false,
		"Disable colors")
	watchCmd.Flags().StringVarP(&watchWindow, "window", "w", "",
		"Initial statistics window (3d, 7d, 14d, 30d, 90d)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	mc, err := watchConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	repo := repository.New(st)
	defer repo.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := repo.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			util.LogWarn("Repository stopped", util.F("error", err))
		}
	}()
	defer wg.Wait()
	defer cancel()

	screen := display.NewTerminalDisplay(&display.DisplayConfig{
		TimeFormat: mc.TimeFormat,
		RowsPerDay: watchRows,
		Days:       watchDays,
		Color:      !watchNoColor,
	}, cmd.OutOrStdout())

	var opts []monitor.Option
	if keyboard, err := interaction.NewKeyboardReader(); err != nil {
		util.LogWarn("Keyboard input unavailable, use Ctrl+C to stop", util.F("error", err))
	} else {
		opts = append(opts, monitor.WithInput(keyboard))
	}

	orchestrator, err := monitor.NewOrchestrator(&mc, repo, screen, opts...)
	if err != nil {
		return err
	}
	return orchestrator.Run(ctx)
}

// watchConfig merges the watch flags into the configured view settings
func watchConfig() (monitor.Config, error) {
	mc := settings.Monitor()
	if watchTimeFormat != "" {
		if watchTimeFormat != "12h" && watchTimeFormat != "24h" {
			return mc, fmt.Errorf("invalid time format '%s': must be either '12h' or '24h'", watchTimeFormat)
		}
		mc.TimeFormat = watchTimeFormat
	}
	if watchDays < 1 {
		return mc, fmt.Errorf("days must be at least 1, got %d", watchDays)
	}
	mc.Days = watchDays
	if watchRefreshRate > 0 {
		mc.NowRefreshInterval = time.Duration(watchRefreshRate) * time.Second
	}
	if watchWindow != "" {
		w, err := aggregator.ParseWindow(watchWindow)
		if err != nil {
			return mc, err
		}
		mc.Window = w
	}
	return mc, mc.Validate()
}
