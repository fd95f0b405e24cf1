package pitch

import "math"

// RMS returns the root-mean-square level of samples (0 for an empty slice).
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Trim returns the sub-slice between the first and last sample whose
// magnitude reaches threshold. When no sample qualifies the input is
// returned unchanged.
func Trim(samples []float64, threshold float64) []float64 {
	lo := 0
	for lo < len(samples) && math.Abs(samples[lo]) < threshold {
		lo++
	}
	if lo == len(samples) {
		return samples
	}

	hi := len(samples) - 1
	for hi > lo && math.Abs(samples[hi]) < threshold {
		hi--
	}
	return samples[lo : hi+1]
}

// ParabolicShift fits a parabola through (−1, left), (0, centre), (1, right)
// and returns the offset of its vertex, clamped to ±0.5.
func ParabolicShift(left, centre, right float64) float64 {
	den := 2*centre - left - right
	if den == 0 {
		return 0
	}
	shift := 0.5 * (right - left) / den
	switch {
	case shift < -0.5:
		return -0.5
	case shift > 0.5:
		return 0.5
	case math.IsNaN(shift):
		return 0
	}
	return shift
}
