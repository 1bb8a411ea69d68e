package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/presentation/layout"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// DisplayConfig holds the settings of the watch screen
type DisplayConfig struct {
	TimeFormat string
	Width      int // 0 measures the terminal on every frame
	RowsPerDay int
	Days       int
	Color      bool
}

// TerminalDisplay draws views on a terminal. It implements monitor.Renderer
// and monitor.ScreenController.
type TerminalDisplay struct {
	config            *DisplayConfig
	out               io.Writer
	inAlternateScreen bool
	lastLayoutStyle   int
	isFirstRender     bool
}

// NewTerminalDisplay creates a display writing to out, or stdout when out is nil
func NewTerminalDisplay(config *DisplayConfig, out io.Writer) *TerminalDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDisplay{
		config:        config,
		out:           out,
		isFirstRender: true,
	}
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen+util.ClearScreen+util.MoveCursorHome+util.HideCursor)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAltScreen)
	td.inAlternateScreen = false
}

// ClearScreen clears the alternate screen buffer
func (td *TerminalDisplay) ClearScreen() {
	if td.inAlternateScreen {
		fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome)
	}
}

// Render draws one frame. The frame is built in memory and written at once
// so the terminal never shows half a frame.
func (td *TerminalDisplay) Render(view *monitor.View, state monitor.InteractionState) error {
	var frame bytes.Buffer

	if td.inAlternateScreen {
		if td.isFirstRender || td.lastLayoutStyle != state.LayoutStyle {
			frame.WriteString(util.ClearScreen)
			td.lastLayoutStyle = state.LayoutStyle
			td.isFirstRender = false
		}
		frame.WriteString(util.MoveCursorHome)
	}

	switch {
	case state.ShowHelp:
		td.renderHelp(&frame)
	case view == nil:
		td.renderLoadingScreen(&frame, state.LoadingMessage)
	default:
		strategy := layout.GetLayoutStrategy(state.LayoutStyle)
		if err := strategy.Render(&frame, view, td.layoutParam()); err != nil {
			return fmt.Errorf("render %s: %w", strategy.GetName(), err)
		}
		td.renderStatusLine(&frame, state)
	}

	if td.inAlternateScreen {
		frame.WriteString(util.ClearToEnd)
	}
	_, err := td.out.Write(frame.Bytes())
	return err
}

func (td *TerminalDisplay) layoutParam() layout.LayoutParam {
	return layout.LayoutParam{
		TimeFormat: td.config.TimeFormat,
		Width:      td.config.Width,
		RowsPerDay: td.config.RowsPerDay,
		Days:       td.config.Days,
		Color:      td.config.Color,
	}
}

func (td *TerminalDisplay) renderLoadingScreen(w io.Writer, message string) {
	if message == "" {
		message = "Loading..."
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, util.FormatHeaderTitle("💊 Dose Monitor"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "⏳ "+message)
}

func (td *TerminalDisplay) renderStatusLine(w io.Writer, state monitor.InteractionState) {
	var parts []string
	if state.IsPaused {
		parts = append(parts, util.Colorize("⏸ PAUSED", util.ColorYellow, td.config.Color))
	}
	if state.StatusMessage != "" {
		parts = append(parts, util.Colorize("✗ "+state.StatusMessage, util.ColorRed, td.config.Color))
	}
	parts = append(parts, "h help · q quit")
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func (td *TerminalDisplay) renderHelp(w io.Writer) {
	fmt.Fprintln(w, util.FormatHeaderTitle("💊 Dose Monitor - Help"))
	fmt.Fprintln(w, util.FormatSectionSeparator(40))
	keys := [][2]string{
		{"q, Ctrl+C", "quit"},
		{"Esc", "close help, or quit"},
		{"r", "recompute now"},
		{"p", "pause or resume updates"},
		{"w", "next statistics window"},
		{"t", "toggle full and minimal layout"},
		{"h, ?", "toggle this help"},
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %s %s\n", util.PadRight(k[0], 12), k[1])
	}
}
