package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/timeline"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// DefaultRowsPerDay gives one terminal row per hour
const DefaultRowsPerDay = 24

const axisWidth = 6

type cellKey struct {
	day, row int
	subject  model.Subject
}

// TimelineRenderer draws the stacked day layout of a view as text rows.
// Row 0 of a day is its latest hour; midnight sits on the last row.
type TimelineRenderer struct {
	BaseStrategy
	param LayoutParam
}

// NewTimelineRenderer creates a renderer for the given settings
func NewTimelineRenderer(param LayoutParam) *TimelineRenderer {
	return &TimelineRenderer{param: param.withDefaults()}
}

// Lines renders the first param.Days buckets of the view. Each line is
// exactly width display columns wide before coloring.
func (tr *TimelineRenderer) Lines(view *monitor.View, width int) []string {
	if view == nil || len(view.Buckets) == 0 {
		return nil
	}
	rows := tr.param.RowsPerDay
	days := tr.param.Days
	if days > len(view.Buckets) {
		days = len(view.Buckets)
	}

	subjects := model.AllSubjects()
	colWidths := columnWidths(width-axisWidth-1, len(subjects))

	events := make(map[cellKey][]model.IntakeEvent)
	for _, p := range view.Placements {
		if p.DayIndex >= days {
			continue
		}
		key := cellKey{p.DayIndex, tr.rowOf(view, p.DayIndex, p.Offset), p.Event.Subject}
		events[key] = append(events[key], p.Event)
	}
	gaps := make(map[cellKey]monitor.GapPlacement)
	for _, g := range view.Gaps {
		if g.DayIndex >= days {
			continue
		}
		key := cellKey{g.DayIndex, tr.rowOf(view, g.DayIndex, g.Offset), g.Subject}
		if _, taken := gaps[key]; !taken {
			gaps[key] = g
		}
	}
	axis := tr.axisLabels(view.Markers)

	lines := []string{tr.headerLine(subjects, colWidths)}
	for d := 0; d < days; d++ {
		bucket := view.Buckets[d]
		lines = append(lines, tr.dayLine(bucket, width))

		nowRow := -1
		if d == view.TodayIndex {
			nowRow = tr.rowOf(view, d, view.NowOffset)
		}

		for r := 0; r < rows; r++ {
			label := axis[r]
			if r == nowRow {
				label = "now ▸"
			}
			var b strings.Builder
			b.WriteString(util.PadRight(label, axisWidth))
			b.WriteString("│")
			for i, s := range subjects {
				colWidth := colWidths[i]
				key := cellKey{d, r, s}
				cell := ""
				switch {
				case len(events[key]) > 0:
					cell = tr.eventCell(events[key], bucket)
				case gaps[key].Label.Label != "":
					cell = tr.gapCell(gaps[key])
				case r == nowRow:
					cell = strings.Repeat("─", colWidth-1)
				}
				padded := " " + util.PadRight(cell, colWidth-1)
				if cell != "" && len(events[key]) > 0 {
					padded = util.Colorize(padded, tr.SubjectColor(s), tr.param.Color)
				}
				b.WriteString(padded)
			}
			lines = append(lines, b.String())
		}
	}
	return lines
}

// rowOf maps an absolute layout offset to a row of day dayIndex
func (tr *TimelineRenderer) rowOf(view *monitor.View, dayIndex int, offset float64) int {
	height := view.Layout.DayHeight
	within := (offset - float64(dayIndex)*height) / height
	row := int(math.Floor(within * float64(tr.param.RowsPerDay)))
	if row < 0 {
		return 0
	}
	if row >= tr.param.RowsPerDay {
		return tr.param.RowsPerDay - 1
	}
	return row
}

// axisLabels attaches every major marker to the row it falls in
func (tr *TimelineRenderer) axisLabels(markers []timeline.Marker) []string {
	labels := make([]string, tr.param.RowsPerDay)
	for _, m := range markers {
		if !m.Major {
			continue
		}
		row := int(math.Floor(m.Percent / 100 * float64(tr.param.RowsPerDay)))
		if row >= tr.param.RowsPerDay {
			row = tr.param.RowsPerDay - 1
		}
		if labels[row] == "" {
			labels[row] = m.Label
		}
	}
	return labels
}

// columnWidths splits total between n columns, giving the remainder to the last
func columnWidths(total, n int) []int {
	widths := make([]int, n)
	each := total / n
	if each < 4 {
		each = 4
	}
	for i := range widths {
		widths[i] = each
	}
	if rest := total - each*n; rest > 0 {
		widths[n-1] += rest
	}
	return widths
}

func (tr *TimelineRenderer) headerLine(subjects []model.Subject, colWidths []int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", axisWidth))
	b.WriteString("│")
	for i, s := range subjects {
		b.WriteString(" " + util.PadRight(s.String(), colWidths[i]-1))
	}
	return b.String()
}

func (tr *TimelineRenderer) dayLine(bucket timeline.DayBucket, width int) string {
	title := "── " + bucket.Key + " " + bucket.Start.Format("Mon")
	if bucket.IsToday {
		title += " (today)"
	}
	if bucket.Warning != nil {
		title += " ⚠ " + util.FormatDuration(bucket.Warning.Length) + " day"
	}
	title += " "
	fill := width - util.GetDisplayWidth(title)
	if fill < 0 {
		fill = 0
	}
	return title + strings.Repeat("─", fill)
}

// eventCell shows the latest event of the cell and the cell total
func (tr *TimelineRenderer) eventCell(events []model.IntakeEvent, bucket timeline.DayBucket) string {
	latest := events[0]
	for _, e := range events[1:] {
		if e.Timestamp.After(latest.Timestamp) {
			latest = e
		}
	}
	clock := tr.FormatClock(latest.Timestamp.In(bucket.Start.Location()), tr.param.TimeFormat)

	if len(events) == 1 {
		cell := fmt.Sprintf("● %s %s", clock, util.FormatAmountWithUnit(latest.DosageAmount, latest.DosageUnit.Label()))
		if latest.Subtype != model.SubtypeNone {
			cell += " " + string(latest.Subtype)
		}
		return cell
	}

	var total float64
	for _, e := range events {
		total += units.NormalizedMass(e)
	}
	return fmt.Sprintf("●×%d %s %s", len(events), clock, tr.FormatMass(total))
}

func (tr *TimelineRenderer) gapCell(g monitor.GapPlacement) string {
	if g.Label.Open {
		return "┊ " + g.Label.Label + " ago"
	}
	return "┊ " + g.Label.Label
}
