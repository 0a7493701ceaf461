// Package pricing computes booking costs and cancellation refunds.
package pricing

import (
	"math"
	"time"
)

// Round2 rounds to two decimals, the precision all costs are stored at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TotalCost is facility rate times duration plus every equipment rental rate
// times duration, reduced once by the membership discount percentage.
// The result is clamped at zero and rounded to two decimals.
func TotalCost(hourlyRate, durationHours float64, equipmentRates []float64, discountPercent float64) float64 {
	total := hourlyRate * durationHours
	for _, rate := range equipmentRates {
		total += rate * durationHours
	}

	if discountPercent > 0 {
		total *= 1 - discountPercent/100.0
	}

	if total < 0 {
		total = 0
	}
	return Round2(total)
}

// RefundPercent returns the tiered refund for a cancellation happening at
// `now` for a booking starting at `start`:
// >=48h before start 100%, >=24h 50%, >=12h 25%, otherwise 0%.
func RefundPercent(now, start time.Time) float64 {
	until := start.Sub(now)
	switch {
	case until >= 48*time.Hour:
		return 100
	case until >= 24*time.Hour:
		return 50
	case until >= 12*time.Hour:
		return 25
	default:
		return 0
	}
}
