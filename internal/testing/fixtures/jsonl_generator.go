package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// ExportGenerator writes intake exports in the JSONL record format
type ExportGenerator struct {
	baseDir string
}

// NewExportGenerator creates a generator writing below baseDir
func NewExportGenerator(baseDir string) *ExportGenerator {
	return &ExportGenerator{
		baseDir: baseDir,
	}
}

func record(id, subject string, amount float64, unit, subtype string, at time.Time) model.IntakeRecord {
	rec := model.IntakeRecord{
		ID:           id,
		SubjectID:    subject,
		DosageAmount: amount,
		DosageUnit:   unit,
		Timestamp:    at.UTC(),
		CreatedAt:    at.UTC(),
	}
	if subtype != "" {
		rec.Subtype = &subtype
	}
	return rec
}

// GenerateRegularDay writes one subject's doses every four hours of the day
// starting at start. Ids are prefixed with name.
func (g *ExportGenerator) GenerateRegularDay(name, subject string, start time.Time) (string, error) {
	var records []model.IntakeRecord
	for i := 0; i < 6; i++ {
		records = append(records, record(
			fmt.Sprintf("%s-%d", name, i+1),
			subject, 12.5, "mg", "IM",
			start.Add(time.Duration(i)*4*time.Hour)))
	}
	return g.write(name+".jsonl", records, nil)
}

// GenerateMixedExport writes doses of both subjects plus a lost dose, with
// two malformed lines after them.
func (g *ExportGenerator) GenerateMixedExport(name string, start time.Time) (string, error) {
	records := []model.IntakeRecord{
		record(name+"-a1", "AH", 25, "mg", "IM", start),
		record(name+"-b1", "EI", 5, "ml", "IV", start.Add(30*time.Minute)),
		record(name+"-a2", "AH", 10, "mg", "", start.Add(2*time.Hour)),
		record(name+"-n1", "NO", 25, "mg", "LOST", start.Add(3*time.Hour)),
	}
	garbage := []string{
		"{not json",
		`{"id":"x","subjectId":"ZZ","dosageAmount":1,"dosageUnit":"mg","timestamp":"2024-01-01T00:00:00Z"}`,
	}
	return g.write(name+".jsonl", records, garbage)
}

// write stores records, followed by raw lines, in the file named name
func (g *ExportGenerator) write(name string, records []model.IntakeRecord, raw []string) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(g.baseDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	for _, rec := range records {
		data, err := sonic.Marshal(rec)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(file, "%s\n", data); err != nil {
			return "", err
		}
	}
	for _, line := range raw {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return "", err
		}
	}
	return path, nil
}
