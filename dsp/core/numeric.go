package core

import "math"

// CentsPerOctave is the size of one octave in cents.
const CentsPerOctave = 1200.0

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt limits value to the inclusive range [lo, hi].
func ClampInt(value, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Cents returns the interval from ref to freq in cents.
// Returns NaN when either frequency is not positive.
func Cents(freq, ref float64) float64 {
	if freq <= 0 || ref <= 0 {
		return math.NaN()
	}
	return CentsPerOctave * math.Log2(freq/ref)
}

// ShiftCents returns the frequency lying cents away from ref.
func ShiftCents(ref, cents float64) float64 {
	return ref * math.Exp2(cents/CentsPerOctave)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// VolumeToGain maps a 0..100 volume control onto a linear gain in [0, 1].
func VolumeToGain(volume int) float64 {
	return float64(ClampInt(volume, 0, 100)) / 100
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
