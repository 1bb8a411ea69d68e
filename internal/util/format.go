package util

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FormatGap renders an elapsed duration as hours and zero-padded minutes,
// e.g. 1h5m becomes "1:05". Seconds are truncated.
func FormatGap(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatDuration renders a duration as "Xh Ym" or "Ym"
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatAmount renders a dosage amount without trailing zeros, e.g. 2.50 -> "2.5"
func FormatAmount(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	return strconv.FormatFloat(math.Round(amount*100)/100, 'f', -1, 64)
}

// FormatAmountWithUnit renders an amount followed by its unit label
func FormatAmountWithUnit(amount float64, unit string) string {
	return FormatAmount(amount) + " " + unit
}

// FormatPercent renders a percentage with two decimals
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FormatNumber formats an integer with K/M suffixes
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatAverage renders an average with one decimal
func FormatAverage(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
