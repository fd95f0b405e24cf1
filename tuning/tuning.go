package tuning

import (
	"errors"
	"fmt"
	"strings"
)

// StringCount is the number of strings in every tuning.
const StringCount = 6

// ErrUnknownTuning is returned by ByID for unrecognised identifiers.
var ErrUnknownTuning = errors.New("tuning: unknown tuning")

// StringDef is one target note of a tuning.
type StringDef struct {
	Note      string
	Frequency float64
}

// Tuning is a named assignment of target frequencies to six strings, lowest
// string first.
type Tuning struct {
	ID      string
	Name    string
	Strings [StringCount]StringDef
}

// Predefined tunings.
var (
	Standard = Tuning{
		ID:   "standard",
		Name: "Standard (E A D G B E)",
		Strings: [StringCount]StringDef{
			{"E2", 82.41}, {"A2", 110.00}, {"D3", 146.83},
			{"G3", 196.00}, {"B3", 246.94}, {"E4", 329.63},
		},
	}
	DropD = Tuning{
		ID:   "drop-d",
		Name: "Drop D (D A D G B E)",
		Strings: [StringCount]StringDef{
			{"D2", 73.42}, {"A2", 110.00}, {"D3", 146.83},
			{"G3", 196.00}, {"B3", 246.94}, {"E4", 329.63},
		},
	}
	DADGAD = Tuning{
		ID:   "dadgad",
		Name: "DADGAD",
		Strings: [StringCount]StringDef{
			{"D2", 73.42}, {"A2", 110.00}, {"D3", 146.83},
			{"G3", 196.00}, {"A3", 220.00}, {"D4", 293.66},
		},
	}
	OpenG = Tuning{
		ID:   "open-g",
		Name: "Open G (D G D G B D)",
		Strings: [StringCount]StringDef{
			{"D2", 73.42}, {"G2", 98.00}, {"D3", 146.83},
			{"G3", 196.00}, {"B3", 246.94}, {"D4", 293.66},
		},
	}
	HalfStepDown = Tuning{
		ID:   "half-step-down",
		Name: "Half Step Down (Eb Ab Db Gb Bb Eb)",
		Strings: [StringCount]StringDef{
			{"Eb2", 77.78}, {"Ab2", 103.83}, {"Db3", 138.59},
			{"Gb3", 185.00}, {"Bb3", 233.08}, {"Eb4", 311.13},
		},
	}
)

var all = []Tuning{Standard, DropD, DADGAD, OpenG, HalfStepDown}

// All returns the predefined tunings in display order.
func All() []Tuning {
	out := make([]Tuning, len(all))
	copy(out, all)
	return out
}

// ByID looks up a predefined tuning, ignoring case and surrounding space.
func ByID(id string) (Tuning, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	for _, t := range all {
		if t.ID == key {
			return t, nil
		}
	}
	return Tuning{}, fmt.Errorf("%w: %q", ErrUnknownTuning, id)
}

// Targets returns the six target frequencies.
func (t Tuning) Targets() []float64 {
	out := make([]float64, StringCount)
	for i, s := range t.Strings {
		out[i] = s.Frequency
	}
	return out
}
