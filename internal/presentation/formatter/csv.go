package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func formatCSVAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// FormatReport writes one row per day of the window
func (f *CSVFormatter) FormatReport(w io.Writer, report *aggregator.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dailyHeaders()); err != nil {
		return err
	}
	for _, day := range report.Daily {
		if err := cw.Write(dailyValues(day.Date, day.Subjects, formatCSVAmount)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (f *CSVFormatter) FormatIntakes(w io.Writer, events []model.IntakeEvent) error {
	cw := csv.NewWriter(w)
	headers := []string{"id", "subjectId", "dosageAmount", "dosageUnit", "subtype", "timestamp", "mass"}
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			e.ID,
			e.Subject.String(),
			formatCSVAmount(e.DosageAmount),
			e.DosageUnit.String(),
			string(e.Subtype),
			e.Timestamp.Format(time.RFC3339),
			formatCSVAmount(units.NormalizedMass(e)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
