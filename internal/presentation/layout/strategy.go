package layout

import (
	"io"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
)

// LayoutParam carries the display settings shared by every layout
type LayoutParam struct {
	TimeFormat string
	Width      int // 0 measures the terminal
	RowsPerDay int
	Days       int
	Color      bool
}

func (p LayoutParam) withDefaults() LayoutParam {
	if p.Width <= 0 {
		p.Width = sharedSizer.GetMaxWidth()
	}
	if p.RowsPerDay <= 0 {
		p.RowsPerDay = DefaultRowsPerDay
	}
	if p.Days <= 0 {
		p.Days = 1
	}
	return p
}

// LayoutStrategy defines the interface for different layout rendering strategies
type LayoutStrategy interface {
	Render(w io.Writer, view *monitor.View, param LayoutParam) error
	GetName() string
}

// GetLayoutStrategy returns the appropriate layout strategy based on the style
func GetLayoutStrategy(layoutStyle int) LayoutStrategy {
	strategies := map[int]LayoutStrategy{
		monitor.LayoutFull:    &FullLayoutStrategy{},
		monitor.LayoutMinimal: &MinimalLayoutStrategy{},
	}

	if strategy, exists := strategies[layoutStyle]; exists {
		return strategy
	}

	// Default to full dashboard if invalid style
	return &FullLayoutStrategy{}
}
