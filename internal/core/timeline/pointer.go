package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// ResolveMinutes converts a pointer coordinate inside rect to a minute of
// the day. Coordinates outside the rectangle clamp to its edges.
func ResolveMinutes(y float64, rect Rect) (int, error) {
	if math.IsNaN(rect.Height) || math.IsInf(rect.Height, 0) || rect.Height <= 0 {
		return 0, &model.ValidationError{Field: "height", Reason: fmt.Sprintf("must be positive and finite, got %g", rect.Height)}
	}
	if math.IsNaN(rect.Top) || math.IsInf(rect.Top, 0) {
		return 0, &model.ValidationError{Field: "top", Reason: fmt.Sprintf("must be finite, got %g", rect.Top)}
	}
	if math.IsNaN(y) {
		return 0, &model.ValidationError{Field: "y", Reason: "must be a number"}
	}

	ratio := (y - rect.Top) / rect.Height
	ratio = math.Max(0, math.Min(1, ratio))
	return clampMinutes(math.Round(constants.MinutesPerDay * (1 - ratio))), nil
}

// Resolve converts a pointer coordinate to a candidate instant on the day
// starting at dayStart.
func Resolve(y float64, rect Rect, dayStart time.Time) (time.Time, error) {
	minutes, err := ResolveMinutes(y, rect)
	if err != nil {
		return time.Time{}, err
	}
	return dayStart.Add(time.Duration(minutes) * time.Minute), nil
}

// ResolveInLayout finds the day under y in a stacked layout of buckets and
// resolves the instant within it.
func (l Layout) ResolveInLayout(y float64, buckets []DayBucket) (time.Time, error) {
	if l.DayHeight <= 0 {
		return time.Time{}, &model.ValidationError{Field: "dayHeight", Reason: "layout has no height"}
	}
	if len(buckets) == 0 {
		return time.Time{}, &model.ValidationError{Field: "buckets", Reason: "layout holds no days"}
	}
	total := l.TotalHeight(len(buckets))
	if math.IsNaN(y) || y < 0 || y > total {
		return time.Time{}, &model.ValidationError{
			Field:  "y",
			Reason: fmt.Sprintf("%g is outside the layout [0, %g]", y, total),
		}
	}

	dayIndex := l.DayIndexAt(y)
	return Resolve(y, l.DayRect(dayIndex), buckets[dayIndex].Start)
}

// DayIndexAt returns the day rectangle holding y. A shared edge belongs to
// the upper day, where it is that day's midnight.
func (l Layout) DayIndexAt(y float64) int {
	dayIndex := int(math.Ceil(y/l.DayHeight)) - 1
	if dayIndex < 0 {
		return 0
	}
	return dayIndex
}
