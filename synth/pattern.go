package synth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/signal"
)

// Waveform is the oscillator shape of a note.
type Waveform = signal.Waveform

// Waveforms available to tones.
const (
	Sine     = signal.WaveSine
	Triangle = signal.WaveTriangle
	Saw      = signal.WaveSaw
	Square   = signal.WaveSquare
)

// Peak gains for single-voice and chord notes.
const (
	VoiceGain = 0.3
	ChordGain = 0.2
)

// ErrUnknownPattern is returned for pattern kinds outside the table.
var ErrUnknownPattern = errors.New("synth: unknown pattern")

// PatternKind names one of the practice patterns.
type PatternKind int

const (
	Steady PatternKind = iota
	Arpeggio
	Chord
	Scale
	Rhythm
)

var patternNames = [...]string{"steady", "arpeggio", "chord", "scale", "rhythm"}

func (k PatternKind) String() string {
	if k < 0 || int(k) >= len(patternNames) {
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
	return patternNames[k]
}

// ParsePatternKind converts a name such as "arpeggio" into a PatternKind.
func ParsePatternKind(name string) (PatternKind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range patternNames {
		if n == key {
			return PatternKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
}

// Note is a single onset produced by a pattern step.
type Note struct {
	Frequency float64
	Gain      float64
	Duration  time.Duration
	Wave      Waveform
}

// Envelope returns the contour the note is played with.
func (n Note) Envelope() Envelope {
	return NoteEnvelope(n.Gain, n.Duration)
}

// Pattern is the note table of one PatternKind rooted at a base frequency.
type Pattern struct {
	Kind PatternKind
	Base float64

	// Ratios multiply Base. Chords sound all ratios at once, other patterns
	// walk through them one per step.
	Ratios []float64
	// Interval between onsets. Zero means a single onset with no retrigger.
	Interval time.Duration
	// NoteLength of each onset. Zero sustains until the tone is stopped.
	NoteLength time.Duration
	// Gate mutes steps whose entry is false. Nil sounds every step.
	Gate []bool

	Simultaneous bool
	PingPong     bool
	Wave         Waveform
	Gain         float64
}

var rhythmGate = []bool{true, false, true, false, true, true, false, true}

// NewPattern returns the pattern table for kind rooted at base Hz.
func NewPattern(kind PatternKind, base float64) (Pattern, error) {
	if base <= 0 {
		return Pattern{}, fmt.Errorf("synth: base frequency must be > 0: %f", base)
	}

	p := Pattern{Kind: kind, Base: base, Wave: Sine, Gain: VoiceGain}
	switch kind {
	case Steady:
		p.Ratios = []float64{1}
	case Arpeggio:
		p.Ratios = []float64{1, 1.25, 1.5, 2}
		p.Interval = 500 * time.Millisecond
		p.NoteLength = 500 * time.Millisecond
	case Chord:
		p.Ratios = []float64{1, 1.25, 1.5}
		p.Interval = 2500 * time.Millisecond
		p.NoteLength = 2000 * time.Millisecond
		p.Simultaneous = true
		p.Gain = ChordGain
	case Scale:
		p.Ratios = []float64{1, 9.0 / 8, 5.0 / 4, 4.0 / 3, 3.0 / 2, 5.0 / 3, 15.0 / 8, 2}
		p.Interval = 400 * time.Millisecond
		p.NoteLength = 400 * time.Millisecond
		p.PingPong = true
	case Rhythm:
		p.Ratios = []float64{1}
		p.Interval = 250 * time.Millisecond
		p.NoteLength = 250 * time.Millisecond
		p.Gate = rhythmGate
		p.Wave = Square
	default:
		return Pattern{}, fmt.Errorf("%w: %d", ErrUnknownPattern, int(kind))
	}
	return p, nil
}

// Onset returns the time of step i relative to the first onset.
func (p Pattern) Onset(i int) time.Duration {
	return time.Duration(i) * p.Interval
}

// Step returns the notes started at step i. A pattern without an interval
// only sounds at step 0; gated-off steps return nil.
func (p Pattern) Step(i int) []Note {
	if i < 0 || (p.Interval == 0 && i > 0) || len(p.Ratios) == 0 {
		return nil
	}
	if len(p.Gate) > 0 && !p.Gate[i%len(p.Gate)] {
		return nil
	}

	if p.Simultaneous {
		notes := make([]Note, len(p.Ratios))
		for j, r := range p.Ratios {
			notes[j] = p.note(r)
		}
		return notes
	}

	return []Note{p.note(p.Ratios[p.index(i)])}
}

func (p Pattern) index(i int) int {
	n := len(p.Ratios)
	if !p.PingPong || n < 2 {
		return i % n
	}
	period := 2 * (n - 1)
	j := i % period
	if j < n {
		return j
	}
	return period - j
}

func (p Pattern) note(ratio float64) Note {
	return Note{
		Frequency: p.Base * ratio,
		Gain:      p.Gain,
		Duration:  p.NoteLength,
		Wave:      p.Wave,
	}
}
