package aggregator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// Window is the number of calendar days a statistics report covers,
// ending with today.
type Window int

const (
	Window3d  Window = 3
	Window7d  Window = 7
	Window14d Window = 14
	Window30d Window = 30
	Window90d Window = 90

	DefaultWindow = Window7d
)

// AllWindows returns the supported windows in ascending order.
func AllWindows() []Window {
	return []Window{Window3d, Window7d, Window14d, Window30d, Window90d}
}

// Days returns the window length in days
func (w Window) Days() int {
	return int(w)
}

// Valid reports whether w is one of the supported windows
func (w Window) Valid() bool {
	switch w {
	case Window3d, Window7d, Window14d, Window30d, Window90d:
		return true
	default:
		return false
	}
}

// String returns a display label.
func (w Window) String() string {
	return fmt.Sprintf("%dd", int(w))
}

// ParseWindow accepts "7" or "7d".
func ParseWindow(value string) (Window, error) {
	trimmed := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "d")
	days, err := strconv.Atoi(trimmed)
	if err == nil && Window(days).Valid() {
		return Window(days), nil
	}
	return 0, &model.ValidationError{
		Field:  "window",
		Reason: fmt.Sprintf("%q is not one of 3, 7, 14, 30, 90 days", value),
	}
}
