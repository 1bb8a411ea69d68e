package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/interval"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// Aggregator computes statistics reports. It holds no state besides the
// timezone calendar days are cut in.
type Aggregator struct {
	location *time.Location
}

// NewAggregator creates an Aggregator for loc. A nil loc uses the configured
// time provider.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = util.GetTimeProvider().Location()
	}
	return &Aggregator{location: loc}
}

// NewAggregatorWithTimezone creates an Aggregator from a timezone name.
func NewAggregatorWithTimezone(timezone string) (*Aggregator, error) {
	provider := &util.TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return NewAggregator(provider.Location()), nil
}

// accumulator sums counts and masses exactly
type accumulator struct {
	count int
	mass  decimal.Decimal
}

func (a *accumulator) add(mass decimal.Decimal) {
	a.count++
	a.mass = a.mass.Add(mass)
}

func (a accumulator) totals(s model.Subject) Totals {
	return Totals{Subject: s, Count: a.count, Mass: a.mass.InexactFloat64()}
}

type subjectState struct {
	total    accumulator
	rolling  accumulator
	subtypes map[model.Subtype]*accumulator
	events   []model.IntakeEvent
	last     *time.Time
}

// Aggregate computes the report of events over window ending on the day of now.
// Invalid events fail the whole computation. An empty event set yields a
// report with NoData set.
func (a *Aggregator) Aggregate(events []model.IntakeEvent, window Window, now time.Time) (*Report, error) {
	if !window.Valid() {
		return nil, &model.ValidationError{Field: "window", Reason: fmt.Sprintf("%d days is not a supported window", int(window))}
	}
	if now.IsZero() {
		return nil, &model.ValidationError{Field: "now", Reason: "reference time must be set"}
	}
	if err := model.ValidateAll(events); err != nil {
		return nil, err
	}

	now = now.In(a.location)
	days := window.Days()
	todayStart := util.StartOfDay(now, a.location)
	start := util.AddDays(todayStart, -(days - 1))
	end := util.AddDays(todayStart, 1)

	report := &Report{
		GeneratedAt: now,
		Window:      window,
		WindowStart: start,
		WindowEnd:   end,
	}
	if len(events) == 0 {
		report.NoData = true
		return report, nil
	}

	// Sorting first fixes the summation order so reordered input gives
	// identical output.
	ordered := model.CloneEvents(events)
	model.SortByTimestamp(ordered)

	subjects := model.AllSubjects()
	slot := make(map[model.Subject]int, len(subjects))
	states := make([]subjectState, len(subjects))
	for i, s := range subjects {
		slot[s] = i
		states[i].subtypes = make(map[model.Subtype]*accumulator)
	}

	dayKeys := make([]string, days)
	dayStarts := make([]time.Time, days)
	dayIndex := make(map[string]int, days)
	daily := make([][]accumulator, days)
	for i := 0; i < days; i++ {
		dayStarts[i] = util.AddDays(start, i)
		dayKeys[i] = dayStarts[i].Format(constants.DayKeyLayout)
		dayIndex[dayKeys[i]] = i
		daily[i] = make([]accumulator, len(subjects))
	}
	var hourly [24][]accumulator
	for h := range hourly {
		hourly[h] = make([]accumulator, len(subjects))
	}

	cutoff := now.Add(-constants.RollingWindow)
	inWindow := 0
	for _, e := range ordered {
		s := slot[e.Subject]
		state := &states[s]
		mass := units.MassDecimal(e)

		ts := e.Timestamp.In(a.location)
		state.last = &ts

		if !e.Timestamp.Before(cutoff) {
			state.rolling.add(mass)
		}

		local := e.Timestamp.In(a.location)
		if local.Before(start) || !local.Before(end) {
			continue
		}
		idx, ok := dayIndex[local.Format(constants.DayKeyLayout)]
		if !ok {
			continue
		}

		inWindow++
		daily[idx][s].add(mass)
		hourly[local.Hour()][s].add(mass)
		state.total.add(mass)
		state.events = append(state.events, e)

		subtype := e.Subtype
		if subtype == model.SubtypeNone {
			subtype = model.SubtypePO
		}
		acc, ok := state.subtypes[subtype]
		if !ok {
			acc = &accumulator{}
			state.subtypes[subtype] = acc
		}
		acc.add(mass)
	}

	report.Overall = OverallAggregate{
		Count:     inWindow,
		AvgPerDay: float64(inWindow) / float64(days),
	}

	report.Daily = make([]DailyAggregate, days)
	for i := 0; i < days; i++ {
		day := DailyAggregate{Date: dayKeys[i], Start: dayStarts[i], Subjects: make([]Totals, len(subjects))}
		for j, s := range subjects {
			day.Subjects[j] = daily[i][j].totals(s)
		}
		report.Daily[i] = day
	}

	report.Hourly = make([]HourlyAggregate, 24)
	for h := 0; h < 24; h++ {
		hour := HourlyAggregate{Hour: h, Subjects: make([]Totals, len(subjects))}
		for j, s := range subjects {
			hour.Subjects[j] = hourly[h][j].totals(s)
		}
		report.Hourly[h] = hour
	}

	report.Subjects = make([]SubjectAggregate, len(subjects))
	for j, s := range subjects {
		summary, err := summarize(s, &states[j], daily, dayKeys, j, days)
		if err != nil {
			return nil, fmt.Errorf("summarize subject %s: %w", s, err)
		}
		report.Subjects[j] = summary
	}

	util.LogDebug("Aggregated statistics",
		util.F("events", len(events)),
		util.F("inWindow", inWindow),
		util.F("window", window.String()))
	return report, nil
}

func summarize(s model.Subject, state *subjectState, daily [][]accumulator, dayKeys []string, slot, days int) (SubjectAggregate, error) {
	avgInterval, err := interval.Average(state.events)
	if err != nil {
		return SubjectAggregate{}, err
	}

	divisor := decimal.NewFromInt(int64(days))
	summary := SubjectAggregate{
		Subject:       s,
		Count:         state.total.count,
		Mass:          state.total.mass.InexactFloat64(),
		AvgDailyMass:  state.total.mass.Div(divisor).InexactFloat64(),
		AvgDailyCount: float64(state.total.count) / float64(days),
		AvgInterval:   avgInterval,
		Last24h:       state.rolling.totals(s),
		LastIntake:    state.last,
		Subtypes:      breakdown(state.subtypes),
	}

	var maxMass decimal.Decimal
	for i := range daily {
		if daily[i][slot].mass.GreaterThan(maxMass) {
			maxMass = daily[i][slot].mass
			summary.MaxDailyDate = dayKeys[i]
		}
	}
	summary.MaxDailyMass = maxMass.InexactFloat64()
	return summary, nil
}

// breakdown sorts subtypes by count descending, then by name.
func breakdown(subtypes map[model.Subtype]*accumulator) []SubtypeCount {
	rows := make([]SubtypeCount, 0, len(subtypes))
	for st, acc := range subtypes {
		rows = append(rows, SubtypeCount{Subtype: st, Count: acc.count, Mass: acc.mass.InexactFloat64()})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Subtype < rows[j].Subtype
	})
	return rows
}
