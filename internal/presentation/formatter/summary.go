package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// SummaryFormatter prints a per-subject digest of the window
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

func (f *SummaryFormatter) FormatReport(w io.Writer, report *aggregator.Report) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Statistics for the last %d days (%s to %s)\n",
		report.Window.Days(),
		report.WindowStart.Format("2006-01-02"),
		report.WindowEnd.AddDate(0, 0, -1).Format("2006-01-02")))
	b.WriteString(util.FormatSectionSeparator(60) + "\n")

	if report.NoData {
		b.WriteString("No intakes recorded.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, s := range model.AllSubjects() {
		agg := report.Subject(s)
		if agg == nil {
			continue
		}
		if s == model.SubjectRejected {
			b.WriteString(fmt.Sprintf("%s (lost doses): %d in window, %d in last 24h\n", s, agg.Count, agg.Last24h.Count))
			continue
		}
		f.writeSubject(&b, report, agg)
	}

	b.WriteString(util.FormatSectionSeparator(60) + "\n")
	b.WriteString(fmt.Sprintf("All subjects: %d doses, %s per day\n",
		report.Overall.Count, util.FormatAverage(report.Overall.AvgPerDay)))

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *SummaryFormatter) writeSubject(b *strings.Builder, report *aggregator.Report, agg *aggregator.SubjectAggregate) {
	mg := model.UnitMass.Label()
	b.WriteString(fmt.Sprintf("%s\n", agg.Subject))
	b.WriteString(fmt.Sprintf("  Last 24h:        %d doses, %s\n", agg.Last24h.Count, util.FormatAmountWithUnit(agg.Last24h.Mass, mg)))
	b.WriteString(fmt.Sprintf("  Window total:    %d doses, %s\n", agg.Count, util.FormatAmountWithUnit(agg.Mass, mg)))
	b.WriteString(fmt.Sprintf("  Daily average:   %s doses, %s\n", util.FormatAverage(agg.AvgDailyCount), util.FormatAmountWithUnit(agg.AvgDailyMass, mg)))

	if agg.AvgInterval > 0 {
		b.WriteString(fmt.Sprintf("  Average gap:     %s\n", util.FormatGap(agg.AvgInterval)))
	}
	if agg.MaxDailyDate != "" {
		b.WriteString(fmt.Sprintf("  Busiest day:     %s (%s)\n", agg.MaxDailyDate, util.FormatAmountWithUnit(agg.MaxDailyMass, mg)))
	}
	if hour, totals, ok := peakHour(report, agg.Subject); ok {
		b.WriteString(fmt.Sprintf("  Peak hour:       %02d:00 (%d doses)\n", hour, totals.Count))
	}
	if len(agg.Subtypes) > 0 {
		routes := make([]string, 0, len(agg.Subtypes))
		for _, st := range agg.Subtypes {
			routes = append(routes, fmt.Sprintf("%s %d", st.Subtype, st.Count))
		}
		b.WriteString(fmt.Sprintf("  Routes:          %s\n", strings.Join(routes, ", ")))
	}
}

// peakHour returns the hour of the day with the most doses, earliest first on ties
func peakHour(report *aggregator.Report, s model.Subject) (int, aggregator.Totals, bool) {
	best, bestHour := aggregator.Totals{}, -1
	for hour := range report.Hourly {
		totals := report.HourTotals(hour, s)
		if totals.Count > best.Count {
			best, bestHour = totals, hour
		}
	}
	return bestHour, best, bestHour >= 0
}

// FormatIntakes prints the number of intakes per subject and the latest one
func (f *SummaryFormatter) FormatIntakes(w io.Writer, events []model.IntakeEvent) error {
	var b strings.Builder
	for _, s := range model.AllSubjects() {
		subset := model.FilterBySubject(events, s)
		if len(subset) == 0 {
			continue
		}
		model.SortByTimestampDesc(subset)
		latest := subset[0]
		b.WriteString(fmt.Sprintf("%s: %d intakes, latest %s at %s\n",
			s, len(subset),
			util.FormatAmountWithUnit(latest.DosageAmount, latest.DosageUnit.Label()),
			util.GetTimeProvider().Format(latest.Timestamp, "2006-01-02 15:04")))
	}
	if b.Len() == 0 {
		b.WriteString("No intakes recorded.\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
