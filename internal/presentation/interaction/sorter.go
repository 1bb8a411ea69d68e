package interaction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/core/units"
)

// SortField represents the field to sort intakes by
type SortField int

const (
	SortByTime SortField = iota
	SortByAmount
	SortBySubject
)

// SortOrder represents the sort order
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// ParseSortField accepts time, amount or subject
func ParseSortField(value string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "time":
		return SortByTime, nil
	case "amount", "dose":
		return SortByAmount, nil
	case "subject":
		return SortBySubject, nil
	}
	return SortByTime, fmt.Errorf("unknown sort field %q (expected time, amount or subject)", value)
}

// ParseSortOrder accepts asc or desc. Empty means descending.
func ParseSortOrder(value string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "desc":
		return SortDescending, nil
	case "asc":
		return SortAscending, nil
	}
	return SortDescending, fmt.Errorf("unknown sort order %q (expected asc or desc)", value)
}

// IntakeSorter handles sorting of intake lists
type IntakeSorter struct {
	field SortField
	order SortOrder
}

// NewIntakeSorter creates a sorter listing the most recent intake first
func NewIntakeSorter() *IntakeSorter {
	return &IntakeSorter{
		field: SortByTime,
		order: SortDescending,
	}
}

// WithField returns a sorter using field and order
func (s *IntakeSorter) WithField(field SortField, order SortOrder) *IntakeSorter {
	return &IntakeSorter{field: field, order: order}
}

// Sort sorts the events in place. Amounts compare after unit
// normalization; ties fall back to timestamp and then id.
func (s *IntakeSorter) Sort(events []model.IntakeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		var cmp int

		switch s.field {
		case SortByAmount:
			cmp = compareFloat(units.NormalizedMass(a), units.NormalizedMass(b))
		case SortBySubject:
			cmp = int(a.Subject) - int(b.Subject)
		}
		if cmp == 0 {
			cmp = compareTime(a, b)
		}

		if s.order == SortDescending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b model.IntakeEvent) int {
	switch {
	case a.Timestamp.Before(b.Timestamp):
		return -1
	case a.Timestamp.After(b.Timestamp):
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
