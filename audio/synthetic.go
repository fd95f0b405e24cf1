package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-tuner/dsp/signal"
)

// SyntheticSource is a Source backed by an oscillator. Every Read advances
// the signal by len(dst) samples, like a capture device would between polls.
type SyntheticSource struct {
	mu        sync.Mutex
	osc       *signal.Oscillator
	amplitude float64
	rate      float64
	closed    bool
}

// NewSyntheticSource creates a source producing wave at freqHz.
func NewSyntheticSource(wave signal.Waveform, freqHz, amplitude, sampleRate float64) (*SyntheticSource, error) {
	osc, err := signal.NewOscillator(wave, freqHz, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("synthetic source: %w", err)
	}
	return &SyntheticSource{osc: osc, amplitude: amplitude, rate: sampleRate}, nil
}

// SampleRate implements Source.
func (s *SyntheticSource) SampleRate() float64 {
	return s.rate
}

// SetFrequency retunes the oscillator without a phase jump.
func (s *SyntheticSource) SetFrequency(freqHz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.osc.SetFrequency(freqHz)
}

// SetAmplitude changes the output level; zero produces silence.
func (s *SyntheticSource) SetAmplitude(amplitude float64) {
	s.mu.Lock()
	s.amplitude = amplitude
	s.mu.Unlock()
}

// Read implements Source.
func (s *SyntheticSource) Read(dst []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	for i := range dst {
		dst[i] = s.amplitude * s.osc.Next()
	}
	return len(dst), nil
}

// Close implements Source. Closing twice is a no-op.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Opener returns an Opener that hands out this source.
func (s *SyntheticSource) Opener() Opener {
	return OpenerFunc(func(ctx context.Context) (Source, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.closed = false
		s.mu.Unlock()
		return s, nil
	})
}
