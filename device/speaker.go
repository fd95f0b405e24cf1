package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/synth"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// DefaultLatency is the speaker buffer length.
const DefaultLatency = time.Second / 10

// Renderer produces mono output samples on demand. synth.Mixer implements it.
type Renderer interface {
	Render64(dst []float64)
	SampleRate() float64
}

var _ Renderer = (*synth.Mixer)(nil)

// Streamer adapts a Renderer to a stereo beep.Streamer that never drains.
type Streamer struct {
	r   Renderer
	buf []float64
}

// NewStreamer wraps r.
func NewStreamer(r Renderer) *Streamer {
	return &Streamer{r: r}
}

// Stream fills both channels with the rendered mono signal.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	s.buf = core.EnsureLen(s.buf, len(samples))
	s.r.Render64(s.buf)
	for i, v := range s.buf {
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *Streamer) Err() error {
	return nil
}

// Speaker plays a Renderer on the default output device.
type Speaker struct {
	once sync.Once
}

// OpenSpeaker initialises the beep speaker at the renderer's rate and starts
// playback. Failures are reported as audio.ErrAudioUnavailable.
func OpenSpeaker(r Renderer, latency time.Duration) (*Speaker, error) {
	if latency <= 0 {
		latency = DefaultLatency
	}
	sr := beep.SampleRate(int(r.SampleRate()))
	if err := speaker.Init(sr, sr.N(latency)); err != nil {
		return nil, fmt.Errorf("device: init speaker: %w: %w", audio.ErrAudioUnavailable, err)
	}
	speaker.Play(NewStreamer(r))
	return &Speaker{}, nil
}

// Close stops playback and releases the output device.
func (s *Speaker) Close() {
	s.once.Do(func() {
		speaker.Clear()
		speaker.Close()
	})
}
