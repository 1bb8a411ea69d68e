package aggregator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func dose(id string, subject model.Subject, amount float64, unit model.DosageUnit, ts time.Time) model.IntakeEvent {
	return model.IntakeEvent{
		ID:           id,
		Subject:      subject,
		DosageAmount: amount,
		DosageUnit:   unit,
		Timestamp:    ts,
		CreatedAt:    ts,
	}
}

func sampleEvents() []model.IntakeEvent {
	events := []model.IntakeEvent{
		dose("a1", model.SubjectA, 10, model.UnitMass, t0),
		dose("a2", model.SubjectA, 15, model.UnitMass, t0.Add(2*time.Hour)),
		dose("b1", model.SubjectB, 2, model.UnitVolume, t0.Add(time.Hour)),
		dose("a3", model.SubjectA, 7.5, model.UnitMass, t0.Add(-26*time.Hour)),
		dose("b2", model.SubjectB, 0.3, model.UnitVolume, t0.Add(-50*time.Hour)),
		dose("b3", model.SubjectB, 12, model.UnitMass, t0.Add(-6*24*time.Hour)),
		dose("x1", model.SubjectRejected, 0, model.UnitMass, t0.Add(-3*time.Hour)),
	}
	events[0].Subtype = model.SubtypeIM
	events[2].Subtype = model.SubtypeIV
	events[4].Subtype = model.SubtypeIV
	events[6].Subtype = model.SubtypeLost
	return events
}

func TestAggregateScenario(t *testing.T) {
	events := []model.IntakeEvent{
		dose("a1", model.SubjectA, 10, model.UnitMass, t0),
		dose("a2", model.SubjectA, 15, model.UnitMass, t0.Add(2*time.Hour)),
		dose("b1", model.SubjectB, 2, model.UnitVolume, t0.Add(time.Hour)),
	}

	report, err := NewAggregator(time.UTC).Aggregate(events, Window3d, t0.Add(3*time.Hour))
	require.NoError(t, err)
	require.False(t, report.NoData)

	a := report.Subject(model.SubjectA)
	require.NotNil(t, a)
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, 25.0, a.Mass)
	assert.Equal(t, 2*time.Hour, a.AvgInterval)

	b := report.Subject(model.SubjectB)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.Count)
	assert.Equal(t, 40.0, b.Mass)
	assert.Equal(t, time.Duration(0), b.AvgInterval)

	assert.Equal(t, 1, report.HourTotals(8, model.SubjectA).Count)
	assert.Equal(t, 1, report.HourTotals(10, model.SubjectA).Count)
	assert.Equal(t, 1, report.HourTotals(9, model.SubjectB).Count)
	assert.Equal(t, 0, report.HourTotals(9, model.SubjectA).Count)
	assert.Equal(t, 40.0, report.HourTotals(9, model.SubjectB).Mass)

	day, ok := report.DayTotals("2024-06-10", model.SubjectA)
	require.True(t, ok)
	assert.Equal(t, 25.0, day.Mass)

	assert.Equal(t, 3, report.Overall.Count)
	assert.Equal(t, 1.0, report.Overall.AvgPerDay)
}

func TestAggregateNoData(t *testing.T) {
	report, err := NewAggregator(time.UTC).Aggregate(nil, Window7d, t0)
	require.NoError(t, err)
	assert.True(t, report.NoData)
	assert.Empty(t, report.Daily)
	assert.Empty(t, report.Subjects)
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), report.WindowStart)
}

func TestAggregateZeroInWindowIsNotNoData(t *testing.T) {
	old := []model.IntakeEvent{dose("old", model.SubjectA, 5, model.UnitMass, t0.Add(-60*24*time.Hour))}

	report, err := NewAggregator(time.UTC).Aggregate(old, Window7d, t0)
	require.NoError(t, err)
	assert.False(t, report.NoData)
	require.Len(t, report.Daily, 7)
	for _, day := range report.Daily {
		for _, totals := range day.Subjects {
			assert.Zero(t, totals.Count)
		}
	}
	a := report.Subject(model.SubjectA)
	assert.Zero(t, a.Count)
	require.NotNil(t, a.LastIntake)
	assert.Equal(t, old[0].Timestamp, *a.LastIntake)
}

func TestAggregateWindowBounds(t *testing.T) {
	report, err := NewAggregator(time.UTC).Aggregate(sampleEvents(), Window3d, t0)
	require.NoError(t, err)

	require.Len(t, report.Daily, 3)
	assert.Equal(t, "2024-06-08", report.Daily[0].Date)
	assert.Equal(t, "2024-06-10", report.Daily[2].Date)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), report.WindowStart)
	assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), report.WindowEnd)

	// b2 at 06:00 on the 8th is inside, b3 six days back is not
	b := report.Subject(model.SubjectB)
	assert.Equal(t, 2, b.Count)
	assert.InDelta(t, 46.0, b.Mass, 1e-9)
}

func TestAggregateLast24hBoundary(t *testing.T) {
	now := t0
	events := []model.IntakeEvent{
		dose("out", model.SubjectA, 10, model.UnitMass, now.Add(-24*time.Hour-time.Second)),
		dose("in", model.SubjectA, 20, model.UnitMass, now.Add(-24*time.Hour+time.Second)),
		dose("edge", model.SubjectB, 1, model.UnitVolume, now.Add(-24*time.Hour)),
	}

	report, err := NewAggregator(time.UTC).Aggregate(events, Window7d, now)
	require.NoError(t, err)

	a := report.Subject(model.SubjectA)
	assert.Equal(t, 1, a.Last24h.Count)
	assert.Equal(t, 20.0, a.Last24h.Mass)

	b := report.Subject(model.SubjectB)
	assert.Equal(t, 1, b.Last24h.Count, "exactly 24h ago is included")
	assert.Equal(t, 20.0, b.Last24h.Mass)
}

func TestAggregateOrderIndependent(t *testing.T) {
	agg := NewAggregator(time.UTC)
	events := sampleEvents()

	expected, err := agg.Aggregate(events, Window7d, t0)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := model.CloneEvents(events)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := agg.Aggregate(shuffled, Window7d, t0)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestAggregateDailySumsMatchTotals(t *testing.T) {
	for _, window := range AllWindows() {
		t.Run(window.String(), func(t *testing.T) {
			report, err := NewAggregator(time.UTC).Aggregate(sampleEvents(), window, t0)
			require.NoError(t, err)
			require.Len(t, report.Daily, window.Days())

			for _, summary := range report.Subjects {
				var mass float64
				var count int
				for _, day := range report.Daily {
					totals, ok := report.DayTotals(day.Date, summary.Subject)
					require.True(t, ok)
					mass += totals.Mass
					count += totals.Count
				}
				assert.InDelta(t, summary.Mass, mass, 1e-9, "subject %s", summary.Subject)
				assert.Equal(t, summary.Count, count)

				var hourlyCount int
				for h := 0; h < 24; h++ {
					hourlyCount += report.HourTotals(h, summary.Subject).Count
				}
				assert.Equal(t, summary.Count, hourlyCount)
				assert.InDelta(t, summary.Mass/float64(window.Days()), summary.AvgDailyMass, 1e-9)
			}
		})
	}
}

func TestAggregateSubtypeBreakdown(t *testing.T) {
	events := []model.IntakeEvent{
		dose("1", model.SubjectA, 10, model.UnitMass, t0),
		dose("2", model.SubjectA, 10, model.UnitMass, t0.Add(time.Minute)),
		dose("3", model.SubjectA, 10, model.UnitMass, t0.Add(2*time.Minute)),
		dose("4", model.SubjectA, 1, model.UnitVolume, t0.Add(3*time.Minute)),
		dose("5", model.SubjectA, 10, model.UnitMass, t0.Add(4*time.Minute)),
	}
	events[0].Subtype = model.SubtypeIM
	events[1].Subtype = model.SubtypeIM
	events[3].Subtype = model.SubtypeVTRK
	events[4].Subtype = model.SubtypeIV

	report, err := NewAggregator(time.UTC).Aggregate(events, Window3d, t0.Add(time.Hour))
	require.NoError(t, err)

	subtypes := report.Subject(model.SubjectA).Subtypes
	require.Len(t, subtypes, 4)
	assert.Equal(t, SubtypeCount{Subtype: model.SubtypeIM, Count: 2, Mass: 20}, subtypes[0])
	assert.Equal(t, model.SubtypeIV, subtypes[1].Subtype)
	assert.Equal(t, model.SubtypePO, subtypes[2].Subtype, "missing subtype counts as PO")
	assert.Equal(t, SubtypeCount{Subtype: model.SubtypeVTRK, Count: 1, Mass: 20}, subtypes[3])
}

func TestAggregateMaxDailyMass(t *testing.T) {
	report, err := NewAggregator(time.UTC).Aggregate(sampleEvents(), Window7d, t0)
	require.NoError(t, err)

	a := report.Subject(model.SubjectA)
	assert.Equal(t, 25.0, a.MaxDailyMass)
	assert.Equal(t, "2024-06-10", a.MaxDailyDate)

	rejected := report.Subject(model.SubjectRejected)
	assert.Equal(t, 1, rejected.Count)
	assert.Zero(t, rejected.MaxDailyMass)
	assert.Empty(t, rejected.MaxDailyDate)
}

func TestAggregateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 10th is 21:00 on the 9th locally
	events := []model.IntakeEvent{dose("late", model.SubjectA, 10, model.UnitMass, time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC))}

	report, err := NewAggregator(loc).Aggregate(events, Window3d, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	totals, ok := report.DayTotals("2024-06-09", model.SubjectA)
	require.True(t, ok)
	assert.Equal(t, 1, totals.Count)
	assert.Equal(t, 1, report.HourTotals(21, model.SubjectA).Count)
}

func TestAggregateRejectsInvalidInput(t *testing.T) {
	agg := NewAggregator(time.UTC)

	_, err := agg.Aggregate(sampleEvents(), Window(5), t0)
	assert.True(t, model.IsValidationError(err))

	_, err = agg.Aggregate(sampleEvents(), Window7d, time.Time{})
	assert.True(t, model.IsValidationError(err))

	bad := sampleEvents()
	bad[1].DosageAmount = -4
	_, err = agg.Aggregate(bad, Window7d, t0)
	assert.True(t, model.IsValidationError(err))
}

func TestNewAggregatorWithTimezone(t *testing.T) {
	agg, err := NewAggregatorWithTimezone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", agg.location.String())

	_, err = NewAggregatorWithTimezone("Nowhere/City")
	assert.Error(t, err)
}
