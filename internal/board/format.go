package board

import (
	"math"

	"github.com/shopspring/decimal"
)

// Placeholder is displayed while a value is loading or unavailable.
const Placeholder = "-"

// FormatNumber renders v with the shortest decimal representation that
// round-trips, e.g. 150.25, -1.5 or 0.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return decimal.NewFromFloat(v).String()
}
