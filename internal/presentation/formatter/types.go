package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
)

// Formatter renders statistics reports and intake lists
type Formatter interface {
	FormatReport(w io.Writer, report *aggregator.Report) error
	FormatIntakes(w io.Writer, events []model.IntakeEvent) error
}

// Formats lists the names accepted by NewFormatter
func Formats() []string {
	return []string{"table", "json", "csv", "summary"}
}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	case "summary":
		return NewSummaryFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (expected %s)", name, strings.Join(Formats(), ", "))
}

// dailyHeaders returns the column titles of the per-day statistics
func dailyHeaders() []string {
	headers := []string{"Date"}
	for _, s := range model.AllSubjects() {
		if s == model.SubjectRejected {
			headers = append(headers, s.String()+" lost")
			continue
		}
		headers = append(headers, s.String()+" doses", s.String()+" mg")
	}
	return headers
}

// dailyValues flattens one day into the columns of dailyHeaders
func dailyValues(date string, totals []aggregator.Totals, amount func(float64) string) []string {
	values := []string{date}
	for _, s := range model.AllSubjects() {
		t := findTotals(totals, s)
		if s == model.SubjectRejected {
			values = append(values, fmt.Sprintf("%d", t.Count))
			continue
		}
		values = append(values, fmt.Sprintf("%d", t.Count), amount(t.Mass))
	}
	return values
}

func findTotals(totals []aggregator.Totals, s model.Subject) aggregator.Totals {
	for _, t := range totals {
		if t.Subject == s {
			return t
		}
	}
	return aggregator.Totals{Subject: s}
}

// windowTotals sums the daily rows per subject
func windowTotals(report *aggregator.Report) []aggregator.Totals {
	sums := make([]aggregator.Totals, 0, len(model.AllSubjects()))
	for _, s := range model.AllSubjects() {
		total := aggregator.Totals{Subject: s}
		if agg := report.Subject(s); agg != nil {
			total.Count = agg.Count
			total.Mass = agg.Mass
		}
		sums = append(sums, total)
	}
	return sums
}

var intakeHeaders = []string{"ID", "Time", "Subject", "Dose", "Subtype", "Mass (mg)"}
