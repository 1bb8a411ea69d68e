package layout

import (
	"fmt"
	"io"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// FullLayoutStrategy implements the full dashboard layout: per-subject
// statistics on top and the day timeline below.
type FullLayoutStrategy struct {
	BaseStrategy
}

func (s *FullLayoutStrategy) GetName() string {
	return "Full Dashboard"
}

func (s *FullLayoutStrategy) Render(w io.Writer, view *monitor.View, param LayoutParam) error {
	param = param.withDefaults()
	width := param.Width

	lines := []string{s.TopBorder(width), s.header(view, param)}
	lines = append(lines, s.SeparatorLine(width))
	lines = append(lines, s.statistics(view, param)...)

	if len(view.Warnings) > 0 {
		lines = append(lines, s.SeparatorLine(width))
		for _, warning := range view.Warnings {
			lines = append(lines, s.BoxLine("⚠ "+warning, width))
		}
	}

	lines = append(lines, s.SeparatorLine(width))
	for _, row := range NewTimelineRenderer(param).Lines(view, width-4) {
		lines = append(lines, "│ "+row+" │")
	}
	lines = append(lines, s.BottomBorder(width))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *FullLayoutStrategy) header(view *monitor.View, param LayoutParam) string {
	title := fmt.Sprintf("💊 DOSE MONITOR  window %s", view.Window)
	clock := s.FormatClock(view.GeneratedAt, param.TimeFormat)
	return s.SplitLine(title, clock, param.Width)
}

func (s *FullLayoutStrategy) statistics(view *monitor.View, param LayoutParam) []string {
	if !view.HasData() {
		return []string{s.BoxLine("No intakes recorded yet", param.Width)}
	}

	report := view.Report
	var lines []string
	for _, subject := range model.AllSubjects() {
		agg := report.Subject(subject)
		if agg == nil {
			continue
		}
		line := s.SubjectLine(agg, view.Window, param.TimeFormat)
		lines = append(lines, s.BoxLine(line, param.Width))
	}

	overall := fmt.Sprintf("all %d doses in %s  ⌀ %s/day",
		report.Overall.Count, view.Window, util.FormatAverage(report.Overall.AvgPerDay))
	lines = append(lines, s.BoxLine(overall, param.Width))
	return lines
}
