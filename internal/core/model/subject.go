package model

import (
	"fmt"
	"strings"
)

// Subject identifies whose dose an intake event records. The set is closed:
// two tracked subjects plus the reject sentinel for lost doses.
type Subject int

const (
	SubjectUnknown Subject = iota
	SubjectA
	SubjectB
	SubjectRejected
)

// Wire codes used by the store and the HTTP surface
const (
	SubjectCodeA        = "AH"
	SubjectCodeB        = "EI"
	SubjectCodeRejected = "NO"
)

// AllSubjects returns every valid subject in display order.
func AllSubjects() []Subject {
	return []Subject{SubjectA, SubjectB, SubjectRejected}
}

// TrackedSubjects returns the two real subjects, without the reject sentinel.
func TrackedSubjects() []Subject {
	return []Subject{SubjectA, SubjectB}
}

func (s Subject) String() string {
	switch s {
	case SubjectA:
		return SubjectCodeA
	case SubjectB:
		return SubjectCodeB
	case SubjectRejected:
		return SubjectCodeRejected
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the closed set of subjects.
func (s Subject) Valid() bool {
	return s == SubjectA || s == SubjectB || s == SubjectRejected
}

// DefaultSubtype is the administration route preselected for a subject.
func (s Subject) DefaultSubtype() Subtype {
	switch s {
	case SubjectA:
		return SubtypeIM
	case SubjectB:
		return SubtypeIV
	default:
		return SubtypeNone
	}
}

// ParseSubject parses a wire code or one of its aliases.
func ParseSubject(value string) (Subject, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case SubjectCodeA, "A":
		return SubjectA, nil
	case SubjectCodeB, "B":
		return SubjectB, nil
	case SubjectCodeRejected, "REJECTED":
		return SubjectRejected, nil
	}
	return SubjectUnknown, &ValidationError{
		Field:  "subjectId",
		Reason: fmt.Sprintf("unknown subject %q (expected %s, %s or %s)", value, SubjectCodeA, SubjectCodeB, SubjectCodeRejected),
	}
}

func (s Subject) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &ValidationError{Field: "subjectId", Reason: "subject is not set"}
	}
	return []byte(s.String()), nil
}

func (s *Subject) UnmarshalText(text []byte) error {
	parsed, err := ParseSubject(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
