package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/gordonklaus/portaudio"
)

// Capture defaults.
const (
	DefaultSampleRate = 44100
	DefaultFrames     = 512
	DefaultHistory    = 8192
)

// CaptureOption configures a Capture.
type CaptureOption func(*Capture)

// WithCaptureRate sets the requested input sample rate.
func WithCaptureRate(sr float64) CaptureOption {
	return func(c *Capture) {
		if sr > 0 {
			c.sampleRate = sr
		}
	}
}

// WithFramesPerBuffer sets the callback size.
func WithFramesPerBuffer(n int) CaptureOption {
	return func(c *Capture) {
		if n > 0 {
			c.frames = n
		}
	}
}

// WithHistory sets how many recent samples a capture source keeps.
func WithHistory(n int) CaptureOption {
	return func(c *Capture) {
		if n > 0 {
			c.history = n
		}
	}
}

// Capture opens the default portaudio input device as an audio.Source.
type Capture struct {
	sampleRate float64
	frames     int
	history    int
}

// NewCapture creates a capture opener.
func NewCapture(opts ...CaptureOption) *Capture {
	c := &Capture{sampleRate: DefaultSampleRate, frames: DefaultFrames, history: DefaultHistory}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Open initialises portaudio and starts a mono input stream. Any failure is
// reported as audio.ErrPermissionDenied.
func (c *Capture) Open(ctx context.Context) (audio.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("device: init portaudio: %w: %w", audio.ErrPermissionDenied, err)
	}

	ring := audio.NewRing(c.history, c.sampleRate)
	stream, err := portaudio.OpenDefaultStream(1, 0, c.sampleRate, c.frames, func(in []float32) {
		ring.Write32(in)
	})
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("device: open input: %w: %w", audio.ErrPermissionDenied, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("device: start input: %w: %w", audio.ErrPermissionDenied, err)
	}

	return &captureSource{stream: stream, ring: ring}, nil
}

type captureSource struct {
	stream *portaudio.Stream
	ring   *audio.Ring

	mu     sync.Mutex
	closed bool
}

func (s *captureSource) SampleRate() float64 {
	return s.ring.SampleRate()
}

func (s *captureSource) Read(dst []float64) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, audio.ErrClosed
	}
	return s.ring.Latest(dst), nil
}

// Close stops the stream and releases portaudio. Closing twice is a no-op.
func (s *captureSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := s.stream.Stop(); err != nil {
		firstErr = err
	}
	if err := s.stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return fmt.Errorf("device: close input: %w", firstErr)
	}
	return nil
}
