package model

import (
	"time"
)

// IntakeRecord is the storage and wire representation of an IntakeEvent.
type IntakeRecord struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subjectId"`
	DosageAmount float64    `json:"dosageAmount"`
	DosageUnit   string     `json:"dosageUnit"`
	Subtype      *string    `json:"subtype"`
	Timestamp    time.Time  `json:"timestamp"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// ToRecord converts an event into its storage form.
func (e IntakeEvent) ToRecord() IntakeRecord {
	rec := IntakeRecord{
		ID:           e.ID,
		SubjectID:    e.Subject.String(),
		DosageAmount: e.DosageAmount,
		DosageUnit:   e.DosageUnit.String(),
		Timestamp:    e.Timestamp,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.Subtype != SubtypeNone {
		st := string(e.Subtype)
		rec.Subtype = &st
	}
	return rec
}

// ToEvent parses and validates a stored record.
func (r IntakeRecord) ToEvent() (IntakeEvent, error) {
	subject, err := ParseSubject(r.SubjectID)
	if err != nil {
		return IntakeEvent{}, err
	}
	unit, err := ParseDosageUnit(r.DosageUnit)
	if err != nil {
		return IntakeEvent{}, err
	}
	subtype := SubtypeNone
	if r.Subtype != nil {
		if subtype, err = ParseSubtype(*r.Subtype); err != nil {
			return IntakeEvent{}, err
		}
	}
	event := IntakeEvent{
		ID:           r.ID,
		Subject:      subject,
		DosageAmount: r.DosageAmount,
		DosageUnit:   unit,
		Subtype:      subtype,
		Timestamp:    r.Timestamp,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if err := event.Validate(); err != nil {
		return IntakeEvent{}, err
	}
	return event, nil
}

// ToRecords converts a slice of events.
func ToRecords(events []IntakeEvent) []IntakeRecord {
	records := make([]IntakeRecord, 0, len(events))
	for _, e := range events {
		records = append(records, e.ToRecord())
	}
	return records
}
