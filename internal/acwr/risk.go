package acwr

import "math"

// Band is the discrete injury-risk classification of a ratio value.
type Band string

const (
	BandHigh    Band = "high"    // ratio > 1.5, sharp load spike
	BandCaution Band = "caution" // 1.3 < ratio <= 1.5
	BandGood    Band = "good"    // 0.8 <= ratio <= 1.3, the sweet spot
	BandLow     Band = "low"     // ratio < 0.8, detraining
	BandUnknown Band = "unknown" // no usable ratio
)

// Classification thresholds. A ratio of exactly 1.3 is good, exactly 1.5 is
// caution, exactly 0.8 is good.
const (
	ThresholdLow     = 0.8
	ThresholdCaution = 1.3
	ThresholdHigh    = 1.5
)

// Classify maps a ratio to its risk band. Nil and non-finite input yields
// BandUnknown. Classify does not apply the maturity gate — callers decide
// whether the underlying history is long enough to trust the band.
func Classify(ratio *float64) Band {
	if ratio == nil || math.IsNaN(*ratio) || math.IsInf(*ratio, 0) {
		return BandUnknown
	}
	switch r := *ratio; {
	case r > ThresholdHigh:
		return BandHigh
	case r > ThresholdCaution:
		return BandCaution
	case r >= ThresholdLow:
		return BandGood
	default:
		return BandLow
	}
}
