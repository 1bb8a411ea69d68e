package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// Bucketizer groups events into local calendar days
type Bucketizer struct {
	location *time.Location
}

// NewBucketizer creates a bucketizer for the given location. A nil location
// uses the configured time provider.
func NewBucketizer(loc *time.Location) *Bucketizer {
	if loc == nil {
		loc = util.GetTimeProvider().Location()
	}
	return &Bucketizer{location: loc}
}

// Location returns the timezone days are cut in
func (b *Bucketizer) Location() *time.Location {
	return b.location
}

// Bucketize partitions events by local date. The result is sorted most recent
// day first and always contains the day of today, even when it is empty.
// Days between populated buckets are not synthesized. Invalid events fail
// the whole call.
func (b *Bucketizer) Bucketize(events []model.IntakeEvent, today time.Time) ([]DayBucket, error) {
	if err := model.ValidateAll(events); err != nil {
		return nil, err
	}
	todayStart := util.StartOfDay(today, b.location)
	todayKey := todayStart.Format(constants.DayKeyLayout)

	byKey := make(map[string]*DayBucket)
	byKey[todayKey] = b.newBucket(todayStart, true)

	for _, e := range events {
		start := util.StartOfDay(e.Timestamp, b.location)
		key := start.Format(constants.DayKeyLayout)
		bucket, ok := byKey[key]
		if !ok {
			bucket = b.newBucket(start, false)
			byKey[key] = bucket
		}
		bucket.Events = append(bucket.Events, e)
	}

	buckets := make([]DayBucket, 0, len(byKey))
	for _, bucket := range byKey {
		model.SortByTimestampDesc(bucket.Events)
		buckets = append(buckets, *bucket)
	}

	// Keys are ISO dates so string order is chronological order
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key > buckets[j].Key
	})

	util.LogDebug("Bucketized events",
		util.F("events", len(events)),
		util.F("days", len(buckets)),
		util.F("location", b.location.String()))
	return buckets, nil
}

func (b *Bucketizer) newBucket(start time.Time, isToday bool) *DayBucket {
	bucket := &DayBucket{
		Key:     start.Format(constants.DayKeyLayout),
		Start:   start,
		End:     start.Add(constants.DayDuration),
		Events:  []model.IntakeEvent{},
		IsToday: isToday,
	}
	if util.IsOffsetChangeDay(start) {
		bucket.Warning = &TimezoneAmbiguityWarning{
			Key:      bucket.Key,
			Location: b.location.String(),
			Length:   util.AddDays(start, 1).Sub(start),
		}
		util.LogWarn(bucket.Warning.Error())
	}
	return bucket
}

// IndexOf returns the position of the bucket containing t, or -1
func IndexOf(buckets []DayBucket, t time.Time) int {
	for i, b := range buckets {
		key := t.In(b.Start.Location()).Format(constants.DayKeyLayout)
		if key == b.Key {
			return i
		}
	}
	return -1
}
