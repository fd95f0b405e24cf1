package synth

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/signal"
	"github.com/cwbudde/algo-vecmath"
)

const defaultMaxVoices = 16

// MixerOption configures a Mixer.
type MixerOption func(*Mixer)

// WithTap copies every rendered sample, after master gain, into ring.
func WithTap(ring *audio.Ring) MixerOption {
	return func(m *Mixer) {
		m.tap = ring
	}
}

// WithMaxVoices limits the number of simultaneously sounding tones.
func WithMaxVoices(n int) MixerOption {
	return func(m *Mixer) {
		if n > 0 {
			m.maxVoices = n
		}
	}
}

// Mixer is a software Backend. Voices are rendered sample by sample from the
// output callback, summed, then scaled by master gain (zero when muted).
type Mixer struct {
	mu         sync.Mutex
	sampleRate float64
	maxVoices  int
	voices     []*voice
	master     float64
	muted      bool
	tap        *audio.Ring

	mix   []float64
	scr   []float64
	out64 []float64
}

// NewMixer creates a mixer rendering at sampleRate.
func NewMixer(sampleRate float64, opts ...MixerOption) (*Mixer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("synth: mixer sample rate must be > 0: %f", sampleRate)
	}
	m := &Mixer{sampleRate: sampleRate, maxVoices: defaultMaxVoices, master: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// SampleRate returns the render rate.
func (m *Mixer) SampleRate() float64 {
	return m.sampleRate
}

// Tap returns the ring receiving rendered output, or nil.
func (m *Mixer) Tap() *audio.Ring {
	return m.tap
}

// NewTone returns an idle voice bound to the mixer.
func (m *Mixer) NewTone() (ToneGenerator, error) {
	return &voice{m: m, gain: 1}, nil
}

// SetMasterGain sets the output gain, clamped to [0, 1].
func (m *Mixer) SetMasterGain(g float64) {
	m.mu.Lock()
	m.master = core.Clamp(g, 0, 1)
	m.mu.Unlock()
}

// MasterGain returns the output gain.
func (m *Mixer) MasterGain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.master
}

// SetMuted silences output without stopping voices.
func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

// Muted reports the mute state.
func (m *Mixer) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// StopAll silences every voice.
func (m *Mixer) StopAll() {
	m.mu.Lock()
	for _, v := range m.voices {
		v.active = false
	}
	m.voices = m.voices[:0]
	m.mu.Unlock()
}

// ActiveVoices returns the number of sounding voices.
func (m *Mixer) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Render writes the next len(dst) output samples.
func (m *Mixer) Render(dst []float32) {
	m.out64 = core.EnsureLen(m.out64, len(dst))
	m.Render64(m.out64)
	for i, v := range m.out64 {
		dst[i] = float32(v)
	}
}

// Render64 writes the next len(dst) output samples in float64.
func (m *Mixer) Render64(dst []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(dst)
	m.scr = core.EnsureLen(m.scr, len(dst))

	write := 0
	for _, v := range m.voices {
		v.render(m.scr, m.sampleRate)
		vecmath.AddBlockInPlace(dst, m.scr)
		if v.active {
			m.voices[write] = v
			write++
		}
	}
	clear(m.voices[write:])
	m.voices = m.voices[:write]

	gain := m.master
	if m.muted {
		gain = 0
	}
	vecmath.ScaleBlock(dst, dst, gain)

	if m.tap != nil {
		m.tap.Write(dst)
	}
}

func (m *Mixer) add(v *voice) error {
	for _, existing := range m.voices {
		if existing == v {
			return nil
		}
	}
	if len(m.voices) >= m.maxVoices {
		return fmt.Errorf("synth: %d voices already sounding: %w", len(m.voices), audio.ErrAudioUnavailable)
	}
	m.voices = append(m.voices, v)
	return nil
}

func (m *Mixer) remove(v *voice) {
	for i, existing := range m.voices {
		if existing == v {
			m.voices = append(m.voices[:i], m.voices[i+1:]...)
			return
		}
	}
}

// voice is a ToneGenerator rendered by a Mixer. All fields are guarded by
// the mixer's mutex.
type voice struct {
	m      *Mixer
	osc    *signal.Oscillator
	gain   float64
	env    Envelope
	hasEnv bool
	age    int
	active bool
}

func (v *voice) Start(freq float64, wave Waveform) error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	if v.osc != nil && v.osc.Waveform() == wave {
		if err := v.osc.SetFrequency(freq); err != nil {
			return err
		}
	} else {
		osc, err := signal.NewOscillator(wave, freq, v.m.sampleRate)
		if err != nil {
			return err
		}
		v.osc = osc
	}

	if err := v.m.add(v); err != nil {
		return err
	}
	v.active = true
	return nil
}

func (v *voice) Stop() {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if !v.active {
		return
	}
	v.active = false
	v.m.remove(v)
}

func (v *voice) SetGain(g float64) {
	v.m.mu.Lock()
	v.gain = g
	v.hasEnv = false
	v.m.mu.Unlock()
}

func (v *voice) ScheduleEnvelope(env Envelope) {
	v.m.mu.Lock()
	v.env = env
	v.hasEnv = true
	v.age = 0
	v.m.mu.Unlock()
}

func (v *voice) render(dst []float64, sampleRate float64) {
	if !v.active || v.osc == nil {
		clear(dst)
		return
	}

	for i := range dst {
		g := v.gain
		if v.hasEnv {
			sec := float64(v.age) / sampleRate
			if v.env.Duration > 0 && sec >= v.env.Duration.Seconds() {
				clear(dst[i:])
				v.active = false
				return
			}
			g = v.env.at(sec)
		}
		dst[i] = g * v.osc.Next()
		v.age++
	}
}
