package timeline

import (
	"fmt"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// DayBucket holds the events of one local calendar day, most recent first.
// The window is the half-open range [Start, End).
type DayBucket struct {
	Key     string
	Start   time.Time
	End     time.Time
	Events  []model.IntakeEvent
	IsToday bool
	// Warning is set when the day is not 1440 minutes long in its location.
	Warning *TimezoneAmbiguityWarning
}

// Len returns the number of events in the bucket
func (b DayBucket) Len() int {
	return len(b.Events)
}

// TimezoneAmbiguityWarning flags a day whose real length differs from the
// fixed 1440 minutes used for layout. Positions on that day are approximate.
type TimezoneAmbiguityWarning struct {
	Key      string
	Location string
	Length   time.Duration
}

func (w *TimezoneAmbiguityWarning) Error() string {
	return fmt.Sprintf("day %s in %s lasts %s, timeline assumes 24h0m0s", w.Key, w.Location, w.Length)
}

// Rect is the vertical extent of one day on screen
type Rect struct {
	Top    float64
	Height float64
}

// Bottom returns the coordinate just below the rectangle
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Marker is a tick on the time axis of a day
type Marker struct {
	Minutes int
	Percent float64
	Major   bool
	Label   string
}

// Placement positions one event inside a stacked multi-day layout
type Placement struct {
	Event    model.IntakeEvent
	DayIndex int
	Percent  float64
	Offset   float64
}
