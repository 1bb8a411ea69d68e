package monitor

import (
	"fmt"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/interval"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/timeline"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// RefreshController turns a repository snapshot into a View. It holds no
// state between calls, so any snapshot can be recomputed at any time.
type RefreshController struct {
	aggregator *aggregator.Aggregator
	bucketizer *timeline.Bucketizer
	layout     timeline.Layout
	days       int
}

// NewRefreshController creates a controller for the validated config.
// A nil location uses the global time provider.
func NewRefreshController(config *Config, loc *time.Location) (*RefreshController, error) {
	if loc == nil {
		loc = util.GetTimeProvider().Location()
	}
	layout, err := timeline.NewLayout(config.DayHeight)
	if err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &RefreshController{
		aggregator: aggregator.NewAggregator(loc),
		bucketizer: timeline.NewBucketizer(loc),
		layout:     layout,
		days:       config.Days,
	}, nil
}

// Compute builds the full view of snap at now
func (rc *RefreshController) Compute(snap repository.Snapshot, window aggregator.Window, now time.Time) (*View, error) {
	report, err := rc.aggregator.Aggregate(snap.Events, window, now)
	if err != nil {
		return nil, fmt.Errorf("aggregate snapshot %d: %w", snap.Version, err)
	}

	all, err := rc.bucketizer.Bucketize(snap.Events, now)
	if err != nil {
		return nil, fmt.Errorf("bucketize snapshot %d: %w", snap.Version, err)
	}
	buckets := rc.trim(all, now)

	view := &View{
		Version:     snap.Version,
		GeneratedAt: now,
		Window:      window,
		Report:      report,
		Layout:      rc.layout,
		Buckets:     buckets,
		Placements:  rc.layout.Place(buckets),
		Markers:     timeline.Markers(),
		TodayIndex:  timeline.IndexOf(buckets, now),
	}

	if view.TodayIndex >= 0 {
		local := now.In(rc.bucketizer.Location())
		view.NowPercent = timeline.PositionPercent(local)
		view.NowOffset = rc.layout.AbsoluteOffset(view.TodayIndex, view.NowPercent)
	}

	for _, b := range buckets {
		if b.Warning != nil {
			view.Warnings = append(view.Warnings, b.Warning.Error())
		}
	}

	for _, subject := range model.TrackedSubjects() {
		labels, err := interval.Labels(model.FilterBySubject(snap.Events, subject), now)
		if err != nil {
			return nil, fmt.Errorf("gap labels for %s: %w", subject, err)
		}
		for _, label := range labels {
			idx := timeline.IndexOf(buckets, label.Midpoint)
			if idx < 0 {
				continue
			}
			view.Gaps = append(view.Gaps, GapPlacement{
				Subject:  subject,
				Label:    label,
				DayIndex: idx,
				Offset:   rc.layout.Offset(idx, label.Midpoint.In(rc.bucketizer.Location())),
			})
		}
	}

	util.LogDebug("Computed view",
		util.F("version", snap.Version),
		util.F("events", len(snap.Events)),
		util.F("days", len(buckets)),
		util.F("window", window.String()))
	return view, nil
}

// trim keeps today, any later day and the days-1 days before today
func (rc *RefreshController) trim(buckets []timeline.DayBucket, now time.Time) []timeline.DayBucket {
	if rc.days <= 0 {
		return buckets
	}
	todayStart := util.StartOfDay(now, rc.bucketizer.Location())
	cutoff := util.AddDays(todayStart, -(rc.days - 1)).Format(constants.DayKeyLayout)

	kept := make([]timeline.DayBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Key >= cutoff {
			kept = append(kept, b)
		}
	}
	return kept
}

// Layout returns the layout used for placements
func (rc *RefreshController) Layout() timeline.Layout {
	return rc.layout
}

// Location returns the time zone days are bucketed in
func (rc *RefreshController) Location() *time.Location {
	return rc.bucketizer.Location()
}
