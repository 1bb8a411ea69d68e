package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// MinimalLayoutStrategy implements the single line dashboard layout
type MinimalLayoutStrategy struct {
	BaseStrategy
}

func (s *MinimalLayoutStrategy) GetName() string {
	return "Minimal Dashboard"
}

func (s *MinimalLayoutStrategy) Render(w io.Writer, view *monitor.View, param LayoutParam) error {
	clock := s.FormatClock(view.GeneratedAt, param.TimeFormat)
	if !view.HasData() {
		_, err := fmt.Fprintf(w, "Doses: none recorded | %s\n", clock)
		return err
	}

	parts := make([]string, 0, 4)
	for _, subject := range model.TrackedSubjects() {
		agg := view.Report.Subject(subject)
		if agg == nil {
			continue
		}
		part := fmt.Sprintf("%s 24h %d × %s", subject, agg.Last24h.Count, s.FormatMass(agg.Last24h.Mass))
		if agg.LastIntake != nil {
			part += " (last " + s.FormatClock(*agg.LastIntake, param.TimeFormat) + ")"
		}
		parts = append(parts, part)
	}
	if lost := view.Report.Subject(model.SubjectRejected); lost != nil && lost.Last24h.Count > 0 {
		parts = append(parts, fmt.Sprintf("lost %d", lost.Last24h.Count))
	}
	parts = append(parts, clock)

	_, err := fmt.Fprintln(w, "Doses: "+strings.Join(parts, " | "))
	return err
}
