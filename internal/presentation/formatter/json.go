package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) FormatReport(w io.Writer, report *aggregator.Report) error {
	return f.encode(w, report)
}

// FormatIntakes writes the storage records, so the output can be imported again
func (f *JSONFormatter) FormatIntakes(w io.Writer, events []model.IntakeEvent) error {
	return f.encode(w, model.ToRecords(events))
}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	encoder := sonic.ConfigStd.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
