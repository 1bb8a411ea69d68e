package monitor

import (
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/interval"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/timeline"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
)

// GapPlacement positions a gap label of one subject inside the layout
type GapPlacement struct {
	Subject  model.Subject
	Label    interval.GapLabel
	DayIndex int
	Offset   float64
}

// View is everything a renderer needs for one frame. It is rebuilt in full
// from a snapshot and the current time, never patched.
type View struct {
	Version     uint64
	GeneratedAt time.Time
	Window      aggregator.Window

	Report *aggregator.Report

	Layout     timeline.Layout
	Buckets    []timeline.DayBucket
	Placements []timeline.Placement
	Gaps       []GapPlacement
	Markers    []timeline.Marker

	// TodayIndex is the bucket of today, or -1 when it was trimmed away
	TodayIndex int
	NowPercent float64
	NowOffset  float64

	Warnings []string
}

// HasData reports whether the view was built from a non-empty snapshot
func (v *View) HasData() bool {
	return v != nil && v.Report != nil && !v.Report.NoData
}

// EventCount returns the number of events placed on the timeline
func (v *View) EventCount() int {
	if v == nil {
		return 0
	}
	return len(v.Placements)
}
