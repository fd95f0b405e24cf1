package tuning

import (
	"math"
	"strconv"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

// ConcertA is the reference pitch of A4.
const ConcertA = 440.0

var chromatic = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is the nearest equal-tempered note to a frequency.
type Note struct {
	Name      string
	Octave    int
	Frequency float64
	Cents     float64
}

// String returns scientific pitch notation, e.g. "A4".
func (n Note) String() string {
	return n.Name + strconv.Itoa(n.Octave)
}

// NearestNote returns the closest chromatic note (A4 = 440 Hz). ok is false
// for non-positive or non-finite input.
func NearestNote(freq float64) (Note, bool) {
	if freq <= 0 || !core.IsFinite(freq) {
		return Note{}, false
	}

	semis := 12 * math.Log2(freq/ConcertA)
	rounded := math.Round(semis)
	fromC := int(rounded) + 9 + 4*12

	idx := fromC % 12
	if idx < 0 {
		idx += 12
	}
	octave := (fromC - idx) / 12

	exact := ConcertA * math.Exp2(rounded/12)
	return Note{
		Name:      chromatic[idx],
		Octave:    octave,
		Frequency: exact,
		Cents:     core.Cents(freq, exact),
	}, true
}

// NoteName returns the nearest note in scientific pitch notation, or "" when
// freq is not a valid pitch.
func NoteName(freq float64) string {
	n, ok := NearestNote(freq)
	if !ok {
		return ""
	}
	return n.String()
}
