package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-dose-monitor/internal/util"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minWidth       = 60
	maxWidth       = 120
)

// Package-level singleton Sizer instance
var sharedSizer = &Sizer{}

// Sizer measures the terminal and strings shown on it
type Sizer struct {
}

// displayWidth calculates the display width of a string containing wide runes
func (i Sizer) displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (i Sizer) PadString(s string, width int, leftAlign bool) string {
	actualWidth := i.displayWidth(s)
	if actualWidth >= width {
		return s
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// GetTerminalSize returns the size of stdout, or 80x24 when it is not a terminal
func (i Sizer) GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return width, height
}

// GetMaxWidth returns the width of the dashboard box for the current terminal
func (i Sizer) GetMaxWidth() int {
	termWidth, _ := i.GetTerminalSize()
	width := ClampWidth(termWidth - 2)
	util.LogDebugf("GetMaxWidth %d", width)
	return width
}

// ClampWidth keeps a requested width inside the range the layouts support
func ClampWidth(width int) int {
	if width < minWidth {
		return minWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}

// TerminalWidth returns the layout width for the current terminal
func TerminalWidth() int {
	return sharedSizer.GetMaxWidth()
}
