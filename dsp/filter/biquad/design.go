package biquad

import (
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// ButterworthQ gives a maximally flat second-order response.
const ButterworthQ = 1 / math.Sqrt2

// HighPass designs an RBJ cookbook high-pass at freq Hz. Invalid parameters
// yield zero coefficients, which silence the section. A non-positive q
// selects ButterworthQ.
func HighPass(freq, q, sampleRate float64) Coefficients {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return Coefficients{}
	}
	if freq <= 0 || freq >= sampleRate/2 || !core.IsFinite(freq) {
		return Coefficients{}
	}
	if q <= 0 || !core.IsFinite(q) {
		q = ButterworthQ
	}

	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Coefficients{
		B0: (1 + cw) / 2 / a0,
		B1: -(1 + cw) / a0,
		B2: (1 + cw) / 2 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}
