package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func fixtureEvents() []model.IntakeEvent {
	mk := func(id string, s model.Subject, amount float64, unit model.DosageUnit, st model.Subtype, at time.Time) model.IntakeEvent {
		e := model.NewIntakeEvent(s, amount, unit, st, at, at)
		e.ID = id
		return e
	}
	return []model.IntakeEvent{
		mk("0c1f2a3b-aaaa", model.SubjectA, 10, model.UnitMass, model.SubtypeIM, now.Add(-26*time.Hour)),
		mk("1d2e3f4a-bbbb", model.SubjectA, 15, model.UnitMass, model.SubtypeNone, now.Add(-2*time.Hour)),
		mk("2e3f4a5b-cccc", model.SubjectB, 2, model.UnitVolume, model.SubtypeIV, now.Add(-time.Hour)),
		mk("3f4a5b6c-dddd", model.SubjectRejected, 0, model.UnitMass, model.SubtypeLost, now.Add(-30*time.Minute)),
	}
}

func fixtureReport(t *testing.T) *aggregator.Report {
	t.Helper()
	report, err := aggregator.NewAggregator(time.UTC).Aggregate(fixtureEvents(), aggregator.Window3d, now)
	require.NoError(t, err)
	return report
}

func TestMain(m *testing.M) {
	if err := util.InitializeTimeProvider("UTC"); err != nil {
		panic(err)
	}
	m.Run()
}

func TestNewFormatter(t *testing.T) {
	for _, name := range Formats() {
		f, err := NewFormatter(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}
	f, err := NewFormatter("")
	require.NoError(t, err)
	assert.IsType(t, &TableFormatter{}, f)

	_, err = NewFormatter("xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestTableFormatReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewTableFormatter().FormatReport(&out, fixtureReport(t)))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	// top, header, separator, 3 days, separator, total, bottom
	require.Len(t, lines, 9)
	assert.Contains(t, lines[1], "AH doses")
	assert.Contains(t, lines[1], "NO lost")
	assert.Contains(t, lines[3], "2024-06-08")
	assert.Contains(t, lines[5], "2024-06-10")
	assert.Contains(t, lines[7], "Total")
	assert.Contains(t, lines[7], "25")
	assert.Contains(t, lines[7], "40")

	width := util.GetDisplayWidth(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, util.GetDisplayWidth(line), line)
	}
}

func TestTableFormatReportNoData(t *testing.T) {
	report, err := aggregator.NewAggregator(time.UTC).Aggregate(nil, aggregator.Window7d, now)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewTableFormatter().FormatReport(&out, report))
	assert.Equal(t, "No intakes recorded.\n", out.String())
}

func TestTableFormatIntakes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewTableFormatter().FormatIntakes(&out, fixtureEvents()))

	text := out.String()
	assert.Contains(t, text, "0c1f2a3b ")
	assert.NotContains(t, text, "0c1f2a3b-aaaa")
	assert.Contains(t, text, "2024-06-10 11:00")
	assert.Contains(t, text, "2 ml")
	assert.Contains(t, text, "LOST")
	assert.Contains(t, text, "4 intakes")
}

func TestJSONFormatReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatReport(&out, fixtureReport(t)))

	var decoded struct {
		NoData   bool `json:"noData"`
		Subjects []struct {
			Subject string  `json:"subject"`
			Count   int     `json:"count"`
			Mass    float64 `json:"mass"`
		} `json:"subjects"`
	}
	require.NoError(t, sonic.Unmarshal(out.Bytes(), &decoded))
	assert.False(t, decoded.NoData)
	require.Len(t, decoded.Subjects, 3)
	assert.Equal(t, "AH", decoded.Subjects[0].Subject)
	assert.Equal(t, 25.0, decoded.Subjects[0].Mass)
	assert.Equal(t, 40.0, decoded.Subjects[1].Mass)
}

func TestJSONFormatIntakesWritesRecords(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewJSONFormatter().FormatIntakes(&out, fixtureEvents()[:1]))

	var records []model.IntakeRecord
	require.NoError(t, sonic.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "AH", records[0].SubjectID)
	assert.Equal(t, "mass", records[0].DosageUnit)
	require.NotNil(t, records[0].Subtype)
	assert.Equal(t, "IM", *records[0].Subtype)
}

func TestCSVFormatReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewCSVFormatter().FormatReport(&out, fixtureReport(t)))

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "AH doses", "AH mg", "EI doses", "EI mg", "NO lost"}, rows[0])
	assert.Equal(t, []string{"2024-06-10", "1", "15", "1", "40", "1"}, rows[3])
}

func TestCSVFormatIntakes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewCSVFormatter().FormatIntakes(&out, fixtureEvents()))

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"2e3f4a5b-cccc", "EI", "2", "volume", "IV", "2024-06-10T11:00:00Z", "40"}, rows[3])
}

func TestSummaryFormatReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewSummaryFormatter().FormatReport(&out, fixtureReport(t)))

	text := out.String()
	assert.Contains(t, text, "Statistics for the last 3 days (2024-06-08 to 2024-06-10)")
	assert.Contains(t, text, "Window total:    2 doses, 25 mg")
	assert.Contains(t, text, "Average gap:     24:00")
	assert.Contains(t, text, "Routes:          IM 1, PO 1")
	assert.Contains(t, text, "NO (lost doses): 1 in window, 1 in last 24h")
	assert.Contains(t, text, "All subjects: 4 doses, 1.3 per day")
}

func TestSummaryFormatIntakes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewSummaryFormatter().FormatIntakes(&out, fixtureEvents()))
	assert.Contains(t, out.String(), "AH: 2 intakes, latest 15 mg at 2024-06-10 10:00")

	out.Reset()
	require.NoError(t, NewSummaryFormatter().FormatIntakes(&out, nil))
	assert.Equal(t, "No intakes recorded.\n", out.String())
}
