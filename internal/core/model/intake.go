package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
)

// IntakeEvent is one recorded dose, administered or marked lost.
type IntakeEvent struct {
	ID           string
	Subject      Subject
	DosageAmount float64
	DosageUnit   DosageUnit
	Subtype      Subtype
	Timestamp    time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// NewIntakeEvent builds an event for a fresh dose. A lost dose is always
// filed under the reject sentinel regardless of the requested subject.
func NewIntakeEvent(subject Subject, amount float64, unit DosageUnit, subtype Subtype, at, now time.Time) IntakeEvent {
	if subtype == SubtypeLost {
		subject = SubjectRejected
	}
	if at.IsZero() {
		at = now
	}
	return IntakeEvent{
		Subject:      subject,
		DosageAmount: amount,
		DosageUnit:   unit,
		Subtype:      subtype,
		Timestamp:    at,
		CreatedAt:    now,
	}
}

// Validate checks the structural invariants of a stored event.
func (e IntakeEvent) Validate() error {
	if !e.Subject.Valid() {
		return &ValidationError{Field: "subjectId", Reason: "subject is not set"}
	}
	if math.IsNaN(e.DosageAmount) || math.IsInf(e.DosageAmount, 0) {
		return &ValidationError{Field: "dosageAmount", Reason: "must be a finite number"}
	}
	if e.DosageAmount < 0 {
		return &ValidationError{Field: "dosageAmount", Reason: fmt.Sprintf("must be >= 0, got %g", e.DosageAmount)}
	}
	if !e.DosageUnit.Valid() {
		return &ValidationError{Field: "dosageUnit", Reason: "unit is not set"}
	}
	if !e.Subtype.Valid() {
		return &ValidationError{Field: "subtype", Reason: fmt.Sprintf("unknown subtype %q", string(e.Subtype))}
	}
	if e.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Reason: "must be set"}
	}
	return nil
}

// ValidateEntry applies Validate plus the per-dose bounds enforced when a
// dose is entered by hand.
func (e IntakeEvent) ValidateEntry() error {
	if err := e.Validate(); err != nil {
		return err
	}
	limit := constants.MaxMassDosage
	if e.DosageUnit == UnitVolume {
		limit = constants.MaxVolumeDosage
	}
	if e.DosageAmount > limit {
		return &ValidationError{
			Field:  "dosageAmount",
			Reason: fmt.Sprintf("%g %s exceeds the %g %s limit", e.DosageAmount, e.DosageUnit.Label(), limit, e.DosageUnit.Label()),
		}
	}
	return nil
}

// ValidateAll returns the first validation failure in events.
func ValidateAll(events []IntakeEvent) error {
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return fmt.Errorf("event %q: %w", events[i].ID, err)
		}
	}
	return nil
}

// IntakePatch carries the fields of a partial update. Nil fields are left untouched.
type IntakePatch struct {
	Subject      *Subject
	DosageAmount *float64
	DosageUnit   *DosageUnit
	Subtype      *Subtype
	Timestamp    *time.Time
}

func (p IntakePatch) IsEmpty() bool {
	return p.Subject == nil && p.DosageAmount == nil && p.DosageUnit == nil &&
		p.Subtype == nil && p.Timestamp == nil
}

// Apply returns a copy of e with the patch applied and UpdatedAt set to now.
func (p IntakePatch) Apply(e IntakeEvent, now time.Time) IntakeEvent {
	if p.Subject != nil {
		e.Subject = *p.Subject
	}
	if p.DosageAmount != nil {
		e.DosageAmount = *p.DosageAmount
	}
	if p.DosageUnit != nil {
		e.DosageUnit = *p.DosageUnit
	}
	if p.Subtype != nil {
		e.Subtype = *p.Subtype
		if e.Subtype == SubtypeLost {
			e.Subject = SubjectRejected
		}
	}
	if p.Timestamp != nil {
		e.Timestamp = *p.Timestamp
	}
	updated := now
	e.UpdatedAt = &updated
	return e
}

// SortByTimestamp sorts events oldest first. Equal timestamps are ordered by
// ID so the result never depends on the input order.
func SortByTimestamp(events []IntakeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].ID < events[j].ID
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// SortByTimestampDesc sorts events most recent first.
func SortByTimestampDesc(events []IntakeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].ID > events[j].ID
		}
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}

// FilterBySubject returns a new slice holding only the events of subject.
func FilterBySubject(events []IntakeEvent, subject Subject) []IntakeEvent {
	filtered := make([]IntakeEvent, 0, len(events))
	for _, e := range events {
		if e.Subject == subject {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// CloneEvents copies a slice so callers can sort it without touching a shared snapshot.
func CloneEvents(events []IntakeEvent) []IntakeEvent {
	out := make([]IntakeEvent, len(events))
	copy(out, events)
	return out
}
