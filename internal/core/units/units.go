// Package units normalizes dose amounts between the mass and volume units.
package units

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

var ratio = decimal.NewFromInt(constants.VolumeToMassRatio)

// ToMass converts amount to mass units without rounding, so that sums over
// many doses stay exact.
func ToMass(amount float64, unit model.DosageUnit) float64 {
	if unit == model.UnitVolume {
		return decimal.NewFromFloat(amount).Mul(ratio).InexactFloat64()
	}
	return amount
}

// NormalizedMass returns the dose of e expressed in mass units.
func NormalizedMass(e model.IntakeEvent) float64 {
	return ToMass(e.DosageAmount, e.DosageUnit)
}

// MassDecimal is NormalizedMass as a decimal, for exact accumulation.
func MassDecimal(e model.IntakeEvent) decimal.Decimal {
	amount := decimal.NewFromFloat(e.DosageAmount)
	if e.DosageUnit == model.UnitVolume {
		return amount.Mul(ratio)
	}
	return amount
}

// VolumeToMass converts a volume amount and rounds to whole mass units.
func VolumeToMass(volume float64) float64 {
	return decimal.NewFromFloat(volume).Mul(ratio).Round(constants.MassPrecisionPlaces).InexactFloat64()
}

// MassToVolume converts a mass amount and rounds to one decimal place.
func MassToVolume(mass float64) float64 {
	return decimal.NewFromFloat(mass).Div(ratio).Round(constants.VolumePrecisionPlaces).InexactFloat64()
}

// Convert re-expresses amount in the target unit using the rounded conversions.
// Converting to the same unit returns amount unchanged.
func Convert(amount float64, from, to model.DosageUnit) (float64, error) {
	if !from.Valid() || !to.Valid() {
		return 0, &model.ValidationError{Field: "dosageUnit", Reason: fmt.Sprintf("cannot convert %s to %s", from, to)}
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, &model.ValidationError{Field: "dosageAmount", Reason: fmt.Sprintf("must be a finite number, got %g", amount)}
	}
	if amount < 0 {
		return 0, &model.ValidationError{Field: "dosageAmount", Reason: fmt.Sprintf("must be >= 0, got %g", amount)}
	}
	switch {
	case from == to:
		return amount, nil
	case to == model.UnitMass:
		return VolumeToMass(amount), nil
	default:
		return MassToVolume(amount), nil
	}
}
