// Package interval computes the elapsed time between chronologically
// adjacent intake events of a single subject.
package interval

import (
	"fmt"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// GapLabel marks the middle of a gap on the timeline together with its
// formatted duration.
type GapLabel struct {
	From     time.Time
	To       time.Time
	Midpoint time.Time
	Duration time.Duration
	Label    string
	// Open is set for the gap between the latest event and now.
	Open bool
}

// sorted validates that events share one subject and returns an ascending copy.
func sorted(events []model.IntakeEvent) ([]model.IntakeEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}
	subject := events[0].Subject
	for i := range events {
		if events[i].Timestamp.IsZero() {
			return nil, &model.ValidationError{Field: "timestamp", Reason: fmt.Sprintf("event %q has no timestamp", events[i].ID)}
		}
		if events[i].Subject != subject {
			return nil, &model.ValidationError{
				Field:  "subjectId",
				Reason: fmt.Sprintf("intervals need a single subject, got %s and %s", subject, events[i].Subject),
			}
		}
	}
	out := model.CloneEvents(events)
	model.SortByTimestamp(out)
	return out, nil
}

// Gaps returns the elapsed duration between each adjacent pair, oldest first.
func Gaps(events []model.IntakeEvent) ([]time.Duration, error) {
	ordered, err := sorted(events)
	if err != nil {
		return nil, err
	}
	if len(ordered) < 2 {
		return []time.Duration{}, nil
	}

	gaps := make([]time.Duration, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		gaps = append(gaps, absDuration(ordered[i].Timestamp.Sub(ordered[i-1].Timestamp)))
	}
	return gaps, nil
}

// Average returns the mean gap, or 0 when there are fewer than two events.
func Average(events []model.IntakeEvent) (time.Duration, error) {
	gaps, err := Gaps(events)
	if err != nil {
		return 0, err
	}
	return Mean(gaps), nil
}

// Mean averages a set of gaps. An empty set averages to 0.
func Mean(gaps []time.Duration) time.Duration {
	if len(gaps) == 0 {
		return 0
	}
	var total time.Duration
	for _, g := range gaps {
		total += g
	}
	return total / time.Duration(len(gaps))
}

// Labels produces one label per adjacent pair plus one for the gap from the
// latest event to now. Gaps shorter than a minute are dropped.
func Labels(events []model.IntakeEvent, now time.Time) ([]GapLabel, error) {
	ordered, err := sorted(events)
	if err != nil {
		return nil, err
	}

	labels := make([]GapLabel, 0, len(ordered))
	for i := 1; i < len(ordered); i++ {
		if label, ok := newLabel(ordered[i-1].Timestamp, ordered[i].Timestamp, false); ok {
			labels = append(labels, label)
		}
	}
	if len(ordered) > 0 {
		last := ordered[len(ordered)-1].Timestamp
		if now.After(last) {
			if label, ok := newLabel(last, now, true); ok {
				labels = append(labels, label)
			}
		}
	}
	return labels, nil
}

func newLabel(from, to time.Time, open bool) (GapLabel, bool) {
	d := absDuration(to.Sub(from))
	if d < constants.GapLabelThreshold {
		return GapLabel{}, false
	}
	return GapLabel{
		From:     from,
		To:       to,
		Midpoint: from.Add(d / 2),
		Duration: d,
		Label:    util.FormatGap(d),
		Open:     open,
	}, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
