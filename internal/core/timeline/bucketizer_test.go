package timeline

import (
	"testing"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string, ts time.Time) model.IntakeEvent {
	return model.IntakeEvent{
		ID:           id,
		Subject:      model.SubjectA,
		DosageAmount: 10,
		DosageUnit:   model.UnitMass,
		Timestamp:    ts,
	}
}

func mustBucketize(t *testing.T, b *Bucketizer, events []model.IntakeEvent, today time.Time) []DayBucket {
	t.Helper()
	buckets, err := b.Bucketize(events, today)
	require.NoError(t, err)
	return buckets
}

func TestBucketizeEmptyYieldsToday(t *testing.T) {
	b := NewBucketizer(time.UTC)
	today := time.Date(2024, 6, 3, 15, 4, 0, 0, time.UTC)

	buckets := mustBucketize(t, b, nil, today)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2024-06-03", buckets[0].Key)
	assert.True(t, buckets[0].IsToday)
	assert.Empty(t, buckets[0].Events)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, 24*time.Hour, buckets[0].End.Sub(buckets[0].Start))
	assert.Nil(t, buckets[0].Warning)
}

func TestBucketizeGroupsByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	b := NewBucketizer(loc)
	today := time.Date(2024, 6, 3, 12, 0, 0, 0, loc)

	events := []model.IntakeEvent{
		// 23:30 UTC on the 1st is 01:30 local on the 2nd
		event("late", time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)),
		event("early", time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)),
		event("morning", time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC)),
	}

	buckets := mustBucketize(t, b, events, today)
	require.Len(t, buckets, 3)

	assert.Equal(t, []string{"2024-06-03", "2024-06-02", "2024-06-01"},
		[]string{buckets[0].Key, buckets[1].Key, buckets[2].Key})
	assert.True(t, buckets[0].IsToday)
	assert.Empty(t, buckets[0].Events)

	require.Len(t, buckets[1].Events, 2)
	assert.Equal(t, "morning", buckets[1].Events[0].ID, "most recent first")
	assert.Equal(t, "late", buckets[1].Events[1].ID)

	require.Len(t, buckets[2].Events, 1)
	assert.Equal(t, "early", buckets[2].Events[0].ID)
	assert.Equal(t, loc, buckets[2].Start.Location())
}

func TestBucketizeTodayWithEvents(t *testing.T) {
	b := NewBucketizer(time.UTC)
	today := time.Date(2024, 6, 3, 22, 0, 0, 0, time.UTC)

	buckets := mustBucketize(t, b, []model.IntakeEvent{event("x", today.Add(-time.Hour))}, today)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].IsToday)
	assert.Equal(t, 1, buckets[0].Len())
}

func TestBucketizeOrderIndependent(t *testing.T) {
	b := NewBucketizer(time.UTC)
	today := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	events := []model.IntakeEvent{
		event("a", today.Add(-50*time.Hour)),
		event("b", today.Add(-time.Hour)),
		event("c", today.Add(-26*time.Hour)),
	}
	reversed := []model.IntakeEvent{events[2], events[1], events[0]}

	assert.Equal(t, mustBucketize(t, b, events, today), mustBucketize(t, b, reversed, today))
}

func TestBucketizeFlagsOffsetChangeDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	b := NewBucketizer(berlin)
	today := time.Date(2024, 3, 31, 12, 0, 0, 0, berlin)

	buckets := mustBucketize(t, b, nil, today)
	require.Len(t, buckets, 1)
	require.NotNil(t, buckets[0].Warning)
	assert.Equal(t, 23*time.Hour, buckets[0].Warning.Length)
	assert.Contains(t, buckets[0].Warning.Error(), "2024-03-31")
	// layout still treats the day as 24h
	assert.Equal(t, 24*time.Hour, buckets[0].End.Sub(buckets[0].Start))
}

func TestIndexOf(t *testing.T) {
	b := NewBucketizer(time.UTC)
	today := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	buckets := mustBucketize(t, b, []model.IntakeEvent{event("a", today.Add(-24*time.Hour))}, today)

	assert.Equal(t, 0, IndexOf(buckets, today))
	assert.Equal(t, 1, IndexOf(buckets, today.Add(-30*time.Hour)))
	assert.Equal(t, -1, IndexOf(buckets, today.Add(-72*time.Hour)))
}

func TestBucketizeRejectsInvalidEvents(t *testing.T) {
	b := NewBucketizer(time.UTC)
	today := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event model.IntakeEvent
	}{
		{"zero timestamp", event("zero", time.Time{})},
		{"no subject", model.IntakeEvent{ID: "s", DosageAmount: 1, DosageUnit: model.UnitMass, Timestamp: today}},
		{"negative amount", model.IntakeEvent{ID: "n", Subject: model.SubjectA, DosageAmount: -1, DosageUnit: model.UnitMass, Timestamp: today}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets, err := b.Bucketize([]model.IntakeEvent{event("ok", today), tt.event}, today)
			assert.True(t, model.IsValidationError(err), "got %v", err)
			assert.Nil(t, buckets)
		})
	}
}
