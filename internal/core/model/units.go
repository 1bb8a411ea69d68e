package model

import (
	"fmt"
	"strings"
)

// DosageUnit is the unit a dose was recorded in.
type DosageUnit int

const (
	UnitUnknown DosageUnit = iota
	UnitMass
	UnitVolume
)

func (u DosageUnit) String() string {
	switch u {
	case UnitMass:
		return "mass"
	case UnitVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Label is the short unit suffix shown next to amounts.
func (u DosageUnit) Label() string {
	switch u {
	case UnitMass:
		return "mg"
	case UnitVolume:
		return "ml"
	default:
		return "?"
	}
}

func (u DosageUnit) Valid() bool {
	return u == UnitMass || u == UnitVolume
}

// ParseDosageUnit accepts the wire names and the short labels.
func ParseDosageUnit(value string) (DosageUnit, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "mass", "mg":
		return UnitMass, nil
	case "volume", "ml":
		return UnitVolume, nil
	}
	return UnitUnknown, &ValidationError{
		Field:  "dosageUnit",
		Reason: fmt.Sprintf("unknown unit %q (expected mass or volume)", value),
	}
}

func (u DosageUnit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, &ValidationError{Field: "dosageUnit", Reason: "unit is not set"}
	}
	return []byte(u.String()), nil
}

func (u *DosageUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseDosageUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Subtype is the administration route of a dose. The empty value means none.
type Subtype string

const (
	SubtypeNone Subtype = ""
	SubtypeIV   Subtype = "IV"
	SubtypeIM   Subtype = "IM"
	SubtypePO   Subtype = "PO"
	SubtypeIVPO Subtype = "IV+PO"
	SubtypeVTRK Subtype = "VTRK"
	SubtypeLost Subtype = "LOST"
)

// AllSubtypes lists the known routes in selector order.
func AllSubtypes() []Subtype {
	return []Subtype{SubtypeIV, SubtypeIM, SubtypePO, SubtypeIVPO, SubtypeVTRK, SubtypeLost}
}

func (s Subtype) Valid() bool {
	if s == SubtypeNone {
		return true
	}
	for _, known := range AllSubtypes() {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSubtype normalizes case and validates the route.
func ParseSubtype(value string) (Subtype, error) {
	st := Subtype(strings.ToUpper(strings.TrimSpace(value)))
	if !st.Valid() {
		return SubtypeNone, &ValidationError{Field: "subtype", Reason: fmt.Sprintf("unknown subtype %q", value)}
	}
	return st, nil
}
