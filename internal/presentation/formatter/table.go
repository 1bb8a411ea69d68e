package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

const shortIDLength = 8

// TableFormatter draws box tables
type TableFormatter struct {
	timeLayout string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{timeLayout: "2006-01-02 15:04"}
}

func (f *TableFormatter) FormatReport(w io.Writer, report *aggregator.Report) error {
	if report.NoData {
		_, err := fmt.Fprintln(w, "No intakes recorded.")
		return err
	}

	headers := dailyHeaders()
	rows := make([][]string, 0, len(report.Daily)+1)
	for _, day := range report.Daily {
		rows = append(rows, dailyValues(day.Date, day.Subjects, util.FormatAmount))
	}
	total := dailyValues("Total", windowTotals(report), util.FormatAmount)

	t := &table{out: w, headers: headers, leftAligned: 1}
	t.calculateColumnWidths(append(rows, total))
	t.printBorder("top")
	t.printRow(headers)
	t.printBorder("middle")
	for _, row := range rows {
		t.printRow(row)
	}
	t.printBorder("middle")
	t.printRow(total)
	t.printBorder("bottom")
	return t.err
}

func (f *TableFormatter) FormatIntakes(w io.Writer, events []model.IntakeEvent) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		subtype := string(e.Subtype)
		if subtype == "" {
			subtype = "-"
		}
		rows = append(rows, []string{
			shortID(e.ID),
			util.GetTimeProvider().Format(e.Timestamp, f.timeLayout),
			e.Subject.String(),
			util.FormatAmountWithUnit(e.DosageAmount, e.DosageUnit.Label()),
			subtype,
			util.FormatAmount(units.NormalizedMass(e)),
		})
	}

	t := &table{out: w, headers: intakeHeaders, leftAligned: 5}
	t.calculateColumnWidths(rows)
	t.printBorder("top")
	t.printRow(intakeHeaders)
	t.printBorder("middle")
	for _, row := range rows {
		t.printRow(row)
	}
	t.printBorder("bottom")
	if t.err == nil {
		_, t.err = fmt.Fprintf(w, "%d intakes\n", len(events))
	}
	return t.err
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// table writes a box table, remembering the first write error
type table struct {
	out         io.Writer
	headers     []string
	widths      []int
	leftAligned int // leading columns that are left-aligned
	err         error
}

// calculateColumnWidths determines the width of each column from its content
func (t *table) calculateColumnWidths(rows [][]string) {
	t.widths = make([]int, len(t.headers))
	for i, header := range t.headers {
		t.widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range rows {
		for i, value := range row {
			if width := util.GetDisplayWidth(value); width > t.widths[i] {
				t.widths[i] = width
			}
		}
	}
}

func (t *table) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.out, format, args...)
}

// printBorder prints table borders (top, middle, bottom)
func (t *table) printBorder(borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	parts := make([]string, len(t.widths))
	for i, width := range t.widths {
		parts[i] = strings.Repeat("─", width+2) // +2 for padding spaces
	}
	t.printf("%s%s%s\n", left, strings.Join(parts, middle), right)
}

// printRow prints a row, text columns left-aligned and numbers right-aligned
func (t *table) printRow(values []string) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		if i < t.leftAligned {
			b.WriteString(" " + util.PadRight(value, t.widths[i]) + " │")
		} else {
			b.WriteString(" " + util.PadLeft(value, t.widths[i]) + " │")
		}
	}
	t.printf("%s\n", b.String())
}
