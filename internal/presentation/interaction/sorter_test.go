package interaction

import (
	"testing"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortFixture() []model.IntakeEvent {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []model.IntakeEvent{
		{ID: "a", Subject: model.SubjectB, DosageAmount: 1, DosageUnit: model.UnitVolume, Timestamp: base.Add(time.Hour)},
		{ID: "b", Subject: model.SubjectA, DosageAmount: 30, DosageUnit: model.UnitMass, Timestamp: base},
		{ID: "c", Subject: model.SubjectA, DosageAmount: 10, DosageUnit: model.UnitMass, Timestamp: base.Add(2 * time.Hour)},
	}
}

func ids(events []model.IntakeEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestIntakeSorter(t *testing.T) {
	tests := []struct {
		name  string
		field SortField
		order SortOrder
		want  []string
	}{
		{name: "time descending", field: SortByTime, order: SortDescending, want: []string{"c", "a", "b"}},
		{name: "time ascending", field: SortByTime, order: SortAscending, want: []string{"b", "a", "c"}},
		// 1 ml normalizes to 20 mg
		{name: "amount descending", field: SortByAmount, order: SortDescending, want: []string{"b", "a", "c"}},
		{name: "subject ascending", field: SortBySubject, order: SortAscending, want: []string{"b", "c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := sortFixture()
			NewIntakeSorter().WithField(tt.field, tt.order).Sort(events)
			assert.Equal(t, tt.want, ids(events))
		})
	}
}

func TestNewIntakeSorterDefaultsToNewestFirst(t *testing.T) {
	events := sortFixture()
	NewIntakeSorter().Sort(events)
	assert.Equal(t, []string{"c", "a", "b"}, ids(events))
}

func TestParseSortField(t *testing.T) {
	field, err := ParseSortField("Amount")
	require.NoError(t, err)
	assert.Equal(t, SortByAmount, field)

	field, err = ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByTime, field)

	_, err = ParseSortField("color")
	assert.Error(t, err)
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("ASC")
	require.NoError(t, err)
	assert.Equal(t, SortAscending, order)

	order, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDescending, order)

	_, err = ParseSortOrder("sideways")
	assert.Error(t, err)
}
