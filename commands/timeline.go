package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
	"github.com/penwyp/go-dose-monitor/internal/presentation/layout"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var (
	timelineDays    int
	timelineRows    int
	timelineWidth   int
	timelineColor   bool
	timelineResolve float64
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the day-by-day intake timeline",
	Long: `Print the most recent days as a vertical timeline, newest day first.
Within a day the latest hour is at the top and midnight at the bottom.

--resolve maps a layout offset (0 = top of today, one day height per day)
back to the wall-clock time under it.`,
	Args: cobra.NoArgs,
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().IntVar(&timelineDays, "days", 3,
		"Number of days to print")
	timelineCmd.Flags().IntVar(&timelineRows, "rows", layout.DefaultRowsPerDay,
		"Rows per day")
	timelineCmd.Flags().IntVar(&timelineWidth, "width", 0,
		"Line width (0 = terminal width)")
	timelineCmd.Flags().BoolVar(&timelineColor, "color", false,
		"Color intake cells by subject")
	timelineCmd.Flags().Float64Var(&timelineResolve, "resolve", -1,
		"Resolve a layout offset to a time instead of printing")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if timelineDays < 1 {
		return fmt.Errorf("days must be at least 1, got %d", timelineDays)
	}

	mc := settings.Monitor()
	mc.Days = timelineDays
	if err := mc.Validate(); err != nil {
		return err
	}
	controller, err := monitor.NewRefreshController(&mc, nil)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	view, err := controller.Compute(repository.Snapshot{Events: events}, mc.Window, now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cmd.Flags().Changed("resolve") {
		at, err := view.Layout.ResolveInLayout(timelineResolve, view.Buckets)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%g → %s (day %s)\n",
			timelineResolve,
			util.GetTimeProvider().Format(at, "2006-01-02 15:04"),
			view.Buckets[view.Layout.DayIndexAt(timelineResolve)].Key)
		return nil
	}

	width := timelineWidth
	if width <= 0 {
		width = layout.TerminalWidth()
	}
	renderer := layout.NewTimelineRenderer(layout.LayoutParam{
		TimeFormat: mc.TimeFormat,
		Width:      width,
		RowsPerDay: timelineRows,
		Days:       timelineDays,
		Color:      timelineColor,
	})
	for _, line := range renderer.Lines(view, width) {
		fmt.Fprintln(out, line)
	}
	for _, warning := range view.Warnings {
		fmt.Fprintf(out, "⚠ %s\n", warning)
	}
	return nil
}
