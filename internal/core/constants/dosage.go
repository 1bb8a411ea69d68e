package constants

const (
	// VolumeToMassRatio is the fixed conversion between the two dosage units:
	// 1 volume unit (ml) corresponds to 20 mass units (mg).
	VolumeToMassRatio = 20

	// Rounding granularity used when converting between units
	VolumePrecisionPlaces = 1
	MassPrecisionPlaces   = 0

	// Entry bounds for a single dose
	MaxMassDosage   = 250.0
	MaxVolumeDosage = 5.0
)
