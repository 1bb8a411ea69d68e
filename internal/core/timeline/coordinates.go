package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// PositionPercent maps an instant to its height within the day, where
// midnight sits at 100% (bottom) and later times rise toward 0% (top).
// The instant is read in its own location.
func PositionPercent(t time.Time) float64 {
	return PercentFromMinutes(util.MinutesSinceMidnight(t))
}

// PercentFromMinutes is PositionPercent for a minute of the day
func PercentFromMinutes(minutes int) float64 {
	return float64(constants.MinutesPerDay-minutes) / constants.MinutesPerDay * 100
}

// MinutesFromPercent inverts PercentFromMinutes, rounding to the nearest
// minute and clamping to [0, 1440).
func MinutesFromPercent(percent float64) int {
	return clampMinutes(math.Round(constants.MinutesPerDay * (1 - percent/100)))
}

func clampMinutes(m float64) int {
	if m < 0 {
		return 0
	}
	if m > constants.MinutesPerDay-1 {
		return constants.MinutesPerDay - 1
	}
	return int(m)
}

// Layout stacks days vertically, each DayHeight tall. Day 0 is the top.
type Layout struct {
	DayHeight float64
}

// NewLayout validates the day height
func NewLayout(dayHeight float64) (Layout, error) {
	if math.IsNaN(dayHeight) || math.IsInf(dayHeight, 0) || dayHeight <= 0 {
		return Layout{}, &model.ValidationError{Field: "dayHeight", Reason: fmt.Sprintf("must be a positive number, got %g", dayHeight)}
	}
	return Layout{DayHeight: dayHeight}, nil
}

// DefaultLayout uses one unit per minute
func DefaultLayout() Layout {
	return Layout{DayHeight: constants.DefaultDayHeight}
}

// AbsoluteOffset returns the distance from the top of the layout for a
// position percent inside day dayIndex.
func (l Layout) AbsoluteOffset(dayIndex int, percent float64) float64 {
	return float64(dayIndex)*l.DayHeight + percent/100*l.DayHeight
}

// Offset places an instant inside day dayIndex
func (l Layout) Offset(dayIndex int, t time.Time) float64 {
	return l.AbsoluteOffset(dayIndex, PositionPercent(t))
}

// DayRect returns the rectangle of day dayIndex
func (l Layout) DayRect(dayIndex int) Rect {
	return Rect{Top: float64(dayIndex) * l.DayHeight, Height: l.DayHeight}
}

// TotalHeight is the height of a layout holding days buckets
func (l Layout) TotalHeight(days int) float64 {
	return float64(days) * l.DayHeight
}

// Locate maps an absolute offset back to a day index and minute of the day.
// A boundary between two days is the midnight that starts the upper day;
// the very top of the layout clamps to 23:59 of day 0.
func (l Layout) Locate(offset float64) (int, int, error) {
	if l.DayHeight <= 0 {
		return 0, 0, &model.ValidationError{Field: "dayHeight", Reason: "layout has no height"}
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) || offset < 0 {
		return 0, 0, &model.ValidationError{Field: "offset", Reason: fmt.Sprintf("must be a non-negative number, got %g", offset)}
	}

	dayIndex := int(math.Floor(offset / l.DayHeight))
	within := offset - float64(dayIndex)*l.DayHeight
	raw := math.Round(constants.MinutesPerDay * (1 - within/l.DayHeight))
	if raw >= constants.MinutesPerDay && dayIndex > 0 {
		return dayIndex - 1, 0, nil
	}
	return dayIndex, clampMinutes(raw), nil
}

// Place positions every event of the buckets, keeping bucket order as the
// day index.
func (l Layout) Place(buckets []DayBucket) []Placement {
	var placements []Placement
	for i, bucket := range buckets {
		for _, e := range bucket.Events {
			local := e.Timestamp.In(bucket.Start.Location())
			percent := PositionPercent(local)
			placements = append(placements, Placement{
				Event:    e,
				DayIndex: i,
				Percent:  percent,
				Offset:   l.AbsoluteOffset(i, percent),
			})
		}
	}
	return placements
}

// Markers returns the axis ticks of one day, every ten minutes from
// midnight, with a labelled major tick every three hours.
func Markers() []Marker {
	markers := make([]Marker, 0, constants.MinutesPerDay/constants.MarkerStepMinutes)
	for m := 0; m < constants.MinutesPerDay; m += constants.MarkerStepMinutes {
		marker := Marker{
			Minutes: m,
			Percent: PercentFromMinutes(m),
		}
		if m%constants.MajorMarkerStepMinutes == 0 {
			marker.Major = true
			marker.Label = fmt.Sprintf("%02d:00", m/60)
		}
		markers = append(markers, marker)
	}
	return markers
}
