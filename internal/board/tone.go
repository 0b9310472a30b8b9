package board

import "math"

// Tone is the colour treatment of a price change.
type Tone int

const (
	Neutral Tone = iota
	Positive
	Negative
)

func (t Tone) String() string {
	switch t {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// ToneForChange maps a price change to its tone. NaN is neutral.
func ToneForChange(change float64) Tone {
	switch {
	case math.IsNaN(change):
		return Neutral
	case change > 0:
		return Positive
	case change < 0:
		return Negative
	default:
		return Neutral
	}
}
