package synth

import (
	"math"
	"time"
)

// DefaultAttack is the rise time applied to every pattern note.
const DefaultAttack = 50 * time.Millisecond

// Shape selects the release curve of an Envelope.
type Shape int

const (
	// Linear ramps from peak to zero over the release.
	Linear Shape = iota
	// Exponential decays from peak towards expFloor and reaches zero at the
	// end of the note.
	Exponential
)

const expFloor = 0.0001

// Envelope is a gain contour over the life of one note. A zero Duration
// sustains at Peak after the attack until the tone is stopped.
type Envelope struct {
	Peak     float64
	Attack   time.Duration
	Duration time.Duration
	Shape    Shape
}

// NoteEnvelope returns the linear attack/release contour used by patterns.
func NoteEnvelope(peak float64, d time.Duration) Envelope {
	return Envelope{Peak: peak, Attack: DefaultAttack, Duration: d, Shape: Linear}
}

// ReferenceEnvelope returns the contour of the one-second reference tone.
func ReferenceEnvelope() Envelope {
	return Envelope{
		Peak:     ReferenceGain,
		Attack:   5 * time.Millisecond,
		Duration: ReferenceDuration,
		Shape:    Exponential,
	}
}

// At returns the gain t after the note started.
func (e Envelope) At(t time.Duration) float64 {
	return e.at(t.Seconds())
}

// Done reports whether the note has fully decayed at t.
func (e Envelope) Done(t time.Duration) bool {
	return e.Duration > 0 && t >= e.Duration
}

func (e Envelope) at(sec float64) float64 {
	if sec < 0 {
		return 0
	}

	total := e.Duration.Seconds()
	attack := e.Attack.Seconds()
	if total > 0 && attack > total/2 {
		attack = total / 2
	}
	if total > 0 && sec >= total {
		return 0
	}

	if sec < attack {
		return e.Peak * sec / attack
	}
	if total <= 0 {
		return e.Peak
	}

	release := total - attack
	pos := (sec - attack) / release
	switch e.Shape {
	case Exponential:
		if e.Peak <= expFloor {
			return e.Peak * (1 - pos)
		}
		return e.Peak * math.Pow(expFloor/e.Peak, pos)
	default:
		return e.Peak * (1 - pos)
	}
}
