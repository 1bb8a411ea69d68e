package constants

import "time"

const (
	// Calendar day geometry. Every day is treated as exactly 1440 minutes;
	// DST transition days are not stretched or shrunk.
	MinutesPerDay = 1440
	DayDuration   = MinutesPerDay * time.Minute

	// Rolling window used for the "last 24h" totals
	RollingWindow = 24 * time.Hour

	// Gaps shorter than this are noise and get no timeline label
	GapLabelThreshold = 60 * time.Second

	// Periodic "now" refresh that re-triggers recomputation
	DefaultNowRefreshInterval = 60 * time.Second

	// Timeline tick marks
	MarkerStepMinutes      = 10
	MajorMarkerStepMinutes = 180

	// Pixel height of one day in the stacked timeline layout
	DefaultDayHeight = 1440.0

	// Layout of calendar day keys
	DayKeyLayout = "2006-01-02"
)
