package aggregator

import (
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// Totals is a count and normalized mass for one subject
type Totals struct {
	Subject model.Subject `json:"subject"`
	Count   int           `json:"count"`
	Mass    float64       `json:"mass"`
}

// DailyAggregate holds the per-subject totals of one calendar day
type DailyAggregate struct {
	Date     string    `json:"date"`
	Start    time.Time `json:"start"`
	Subjects []Totals  `json:"subjects"`
}

// HourlyAggregate holds the per-subject totals of one hour of the day,
// summed across every day of the window.
type HourlyAggregate struct {
	Hour     int      `json:"hour"`
	Subjects []Totals `json:"subjects"`
}

// SubtypeCount is one row of the route breakdown
type SubtypeCount struct {
	Subtype model.Subtype `json:"subtype"`
	Count   int           `json:"count"`
	Mass    float64       `json:"mass"`
}

// SubjectAggregate summarizes one subject over the window
type SubjectAggregate struct {
	Subject       model.Subject  `json:"subject"`
	Count         int            `json:"count"`
	Mass          float64        `json:"mass"`
	AvgDailyMass  float64        `json:"avgDailyMass"`
	AvgDailyCount float64        `json:"avgDailyCount"`
	AvgInterval   time.Duration  `json:"avgInterval"`
	MaxDailyMass  float64        `json:"maxDailyMass"`
	MaxDailyDate  string         `json:"maxDailyDate,omitempty"`
	Last24h       Totals         `json:"last24h"`
	LastIntake    *time.Time     `json:"lastIntake,omitempty"`
	Subtypes      []SubtypeCount `json:"subtypes"`
}

// OverallAggregate covers every subject together
type OverallAggregate struct {
	Count     int     `json:"count"`
	AvgPerDay float64 `json:"avgPerDay"`
}

// Report is the full statistics view of a snapshot. NoData is set when the
// snapshot holds no events at all; the other fields are then left empty.
type Report struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	Window      Window             `json:"window"`
	WindowStart time.Time          `json:"windowStart"`
	WindowEnd   time.Time          `json:"windowEnd"`
	NoData      bool               `json:"noData"`
	Overall     OverallAggregate   `json:"overall"`
	Subjects    []SubjectAggregate `json:"subjects,omitempty"`
	Daily       []DailyAggregate   `json:"daily,omitempty"`
	Hourly      []HourlyAggregate  `json:"hourly,omitempty"`
}

// Subject returns the summary of s, or nil when the report has none.
func (r *Report) Subject(s model.Subject) *SubjectAggregate {
	for i := range r.Subjects {
		if r.Subjects[i].Subject == s {
			return &r.Subjects[i]
		}
	}
	return nil
}

// DayTotals returns the totals of s on the day with the given key.
func (r *Report) DayTotals(key string, s model.Subject) (Totals, bool) {
	for _, day := range r.Daily {
		if day.Date != key {
			continue
		}
		for _, t := range day.Subjects {
			if t.Subject == s {
				return t, true
			}
		}
	}
	return Totals{}, false
}

// HourTotals returns the totals of s in the given hour of the day.
func (r *Report) HourTotals(hour int, s model.Subject) Totals {
	if hour < 0 || hour >= len(r.Hourly) {
		return Totals{Subject: s}
	}
	for _, t := range r.Hourly[hour].Subjects {
		if t.Subject == s {
			return t
		}
	}
	return Totals{Subject: s}
}
