package signal

import (
	"fmt"
	"math"
)

// Waveform defines an oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
)

func (w Waveform) String() string {
	switch w {
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveSquare:
		return "square"
	default:
		return "sine"
	}
}

// Oscillator is a phase-continuous periodic source. Phase lives in (-pi, pi].
type Oscillator struct {
	wave       Waveform
	sampleRate float64
	phase      float64
	phaseStep  float64
}

// NewOscillator creates an oscillator at freqHz.
// The frequency must lie in (0, sampleRate/2).
func NewOscillator(wave Waveform, freqHz, sampleRate float64) (*Oscillator, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("oscillator sample rate must be > 0: %f", sampleRate)
	}
	o := &Oscillator{wave: wave, sampleRate: sampleRate}
	if err := o.SetFrequency(freqHz); err != nil {
		return nil, err
	}
	return o, nil
}

// SetFrequency changes pitch without resetting phase.
func (o *Oscillator) SetFrequency(freqHz float64) error {
	if freqHz <= 0 || freqHz >= o.sampleRate/2 {
		return fmt.Errorf("oscillator frequency must be in (0, %.1f): %f", o.sampleRate/2, freqHz)
	}
	o.phaseStep = 2 * math.Pi * freqHz / o.sampleRate
	return nil
}

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	return o.phaseStep * o.sampleRate / (2 * math.Pi)
}

// Waveform returns the oscillator shape.
func (o *Oscillator) Waveform() Waveform {
	return o.wave
}

// Reset rewinds the phase to zero.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Next returns one sample in [-1, 1] and advances the phase.
func (o *Oscillator) Next() float64 {
	v := waveSample(o.wave, o.phase)
	o.phase += o.phaseStep
	if o.phase > math.Pi {
		o.phase -= 2 * math.Pi
	}
	return v
}

// Fill writes len(dst) consecutive samples.
func (o *Oscillator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = o.Next()
	}
}

func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveSaw:
		return phase / math.Pi
	case WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}
