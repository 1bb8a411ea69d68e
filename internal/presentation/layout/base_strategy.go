package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// BaseStrategy provides common functionality for all layout strategies
type BaseStrategy struct {
}

// GetSizer returns the shared sizer instance
func (b *BaseStrategy) GetSizer() *Sizer {
	return sharedSizer
}

// TopBorder draws the top edge of the dashboard box
func (b *BaseStrategy) TopBorder(width int) string {
	return "╭" + strings.Repeat("─", width-2) + "╮"
}

// BottomBorder draws the bottom edge of the dashboard box
func (b *BaseStrategy) BottomBorder(width int) string {
	return "╰" + strings.Repeat("─", width-2) + "╯"
}

// SeparatorLine draws a separator inside the box
func (b *BaseStrategy) SeparatorLine(width int) string {
	return "├" + strings.Repeat("─", width-2) + "┤"
}

// BoxLine frames content, padding or truncating it to the box width
func (b *BaseStrategy) BoxLine(content string, width int) string {
	return "│ " + util.PadRight(content, width-4) + " │"
}

// SplitLine places left and right content on one framed line
func (b *BaseStrategy) SplitLine(left, right string, width int) string {
	inner := width - 4
	gap := inner - util.GetDisplayWidth(left) - util.GetDisplayWidth(right)
	if gap < 1 {
		return b.BoxLine(left, width)
	}
	return "│ " + left + strings.Repeat(" ", gap) + right + " │"
}

// FormatClock renders a time of day in the configured 12h or 24h format
func (b *BaseStrategy) FormatClock(t time.Time, timeFormat string) string {
	if timeFormat == "12h" {
		return t.Format("3:04 PM")
	}
	return t.Format("15:04")
}

// FormatMass renders a normalized amount in mass units
func (b *BaseStrategy) FormatMass(mass float64) string {
	return util.FormatAmountWithUnit(mass, model.UnitMass.Label())
}

// SubjectLine summarizes one tracked subject on a single line
func (b *BaseStrategy) SubjectLine(s *aggregator.SubjectAggregate, window aggregator.Window, timeFormat string) string {
	if s.Subject == model.SubjectRejected {
		return fmt.Sprintf("%s  lost %d in 24h, %d in %s",
			s.Subject, s.Last24h.Count, s.Count, window)
	}

	parts := []string{
		fmt.Sprintf("%s  24h %d × %s", s.Subject, s.Last24h.Count, b.FormatMass(s.Last24h.Mass)),
		fmt.Sprintf("%s %d × %s", window, s.Count, b.FormatMass(s.Mass)),
		fmt.Sprintf("⌀ %s/d", b.FormatMass(s.AvgDailyMass)),
	}
	if s.AvgInterval > 0 {
		parts = append(parts, "gap ⌀ "+util.FormatGap(s.AvgInterval))
	}
	if s.LastIntake != nil {
		parts = append(parts, "last "+b.FormatClock(*s.LastIntake, timeFormat))
	}
	return strings.Join(parts, "  ")
}

// SubjectColor returns the terminal color of a subject
func (b *BaseStrategy) SubjectColor(s model.Subject) string {
	switch s {
	case model.SubjectA:
		return util.ColorCyan
	case model.SubjectB:
		return util.ColorMagenta
	default:
		return util.ColorGray
	}
}
