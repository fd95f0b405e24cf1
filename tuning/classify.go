package tuning

import (
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// TunedWindow is the half-width, in cents, of the in-tune band.
const TunedWindow = 5.0

// DefaultTolerance is the relative frequency gap (10% of the target) within
// which a detected pitch is attributed to a string.
const DefaultTolerance = 0.10

// State is the tuning status of one string.
type State int

const (
	// Unknown means no pitch has been attributed to the string yet.
	Unknown State = iota
	Tuned
	Sharp
	Flat
)

func (s State) String() string {
	switch s {
	case Tuned:
		return "tuned"
	case Sharp:
		return "sharp"
	case Flat:
		return "flat"
	default:
		return "unknown"
	}
}

// StateFor classifies a deviation: |cents| < 5 is Tuned, exactly ±5 and
// beyond is Sharp or Flat.
func StateFor(cents float64) State {
	switch {
	case math.IsNaN(cents):
		return Unknown
	case cents >= TunedWindow:
		return Sharp
	case cents <= -TunedWindow:
		return Flat
	default:
		return Tuned
	}
}

// Match is the classification of one frequency against a tuning.
type Match struct {
	Index       int
	String      StringDef
	Frequency   float64
	Cents       float64
	State       State
	InTolerance bool
}

// Classify matches freq against t using DefaultTolerance.
func Classify(freq float64, t Tuning) Match {
	return ClassifyWithin(freq, t, DefaultTolerance)
}

// ClassifyWithin picks the string whose target is closest to freq in Hz;
// ties go to the earlier string. InTolerance reports whether the gap is at
// most tolerance times the target frequency.
func ClassifyWithin(freq float64, t Tuning, tolerance float64) Match {
	best := 0
	bestGap := math.Inf(1)
	for i, s := range t.Strings {
		gap := math.Abs(freq - s.Frequency)
		if gap < bestGap {
			best = i
			bestGap = gap
		}
	}

	target := t.Strings[best]
	cents := core.Cents(freq, target.Frequency)
	return Match{
		Index:       best,
		String:      target,
		Frequency:   freq,
		Cents:       cents,
		State:       StateFor(cents),
		InTolerance: core.IsFinite(cents) && bestGap <= tolerance*target.Frequency,
	}
}
